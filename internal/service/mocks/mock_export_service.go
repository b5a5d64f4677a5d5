package mocks

import (
	"context"
	"io"
	"time"

	"csvexport/internal/exporter"
	"csvexport/internal/model"
	"csvexport/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Render(ctx context.Context, records []model.Record, keys []string) (string, error) {
	args := m.Called(ctx, records, keys)
	return args.String(0), args.Error(1)
}

// Download runs the function given to Run, if any, so tests can drive the saver.
func (m *MockExportService) Download(ctx context.Context, req exporter.Request, saver exporter.FileSaver) error {
	args := m.Called(ctx, req, saver)
	return args.Error(0)
}

func (m *MockExportService) Archive(ctx context.Context, req exporter.Request) (*model.Export, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Export), args.Error(1)
}

func (m *MockExportService) List(ctx context.Context, limit, offset int) (*service.ExportListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportListResult), args.Error(1)
}

func (m *MockExportService) Get(ctx context.Context, id string) (*model.Export, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Export), args.Error(1)
}

func (m *MockExportService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Export, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.Export), args.Error(2)
}

func (m *MockExportService) PresignURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockExportService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExportService) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

package mocks

import (
	"context"

	"csvexport/internal/exporter"

	"github.com/stretchr/testify/mock"
)

type MockFileSaver struct {
	mock.Mock
}

func (m *MockFileSaver) Save(ctx context.Context, f exporter.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"csvexport/internal/exporter"
	"csvexport/internal/metrics"
	"csvexport/internal/model"
	"csvexport/internal/repository"
	"csvexport/internal/serializer"
	"csvexport/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("export not found")
)

// DefaultPresignExpiry applies when PresignURL is called without a positive expiry.
const DefaultPresignExpiry = 15 * time.Minute

// Sink label values reported to metrics.
const (
	SinkText     = "text"
	SinkDownload = "download"
	SinkArchive  = "archive"
)

// ExportListResult is the service-level DTO for paginated exports.
type ExportListResult struct {
	Items []model.Export `json:"data"`
	Total int            `json:"total"`
}

// ExportService defines the use cases for rendering and archiving CSV exports.
type ExportService interface {
	// Render returns the CSV text for records without saving it anywhere.
	Render(ctx context.Context, records []model.Record, keys []string) (string, error)

	// Download renders req and hands the file to saver.
	Download(ctx context.Context, req exporter.Request, saver exporter.FileSaver) error

	// Archive renders req, uploads the file to object storage and saves its metadata.
	// The object is removed again if the metadata cannot be saved.
	Archive(ctx context.Context, req exporter.Request) (*model.Export, error)

	// List returns exports using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ExportListResult, error)

	// Get returns a single export by its ID.
	Get(ctx context.Context, id string) (*model.Export, error)

	// Open returns the stored CSV of an export. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.Export, error)

	// PresignURL returns a time-limited download URL for an export.
	PresignURL(ctx context.Context, id string, expiry time.Duration) (string, error)

	// Delete removes an export by ID from both storage and repository.
	Delete(ctx context.Context, id string) error

	// Purge deletes every export created before cutoff and returns how many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}

type exportService struct {
	store   storage.Storage
	repo    repository.ExportRepository
	metrics *metrics.Exports
	now     func() time.Time
	tracer  trace.Tracer
}

// Option configures the service returned by NewExportService.
type Option func(*exportService)

// WithMetrics reports every exporter run to m.
func WithMetrics(m *metrics.Exports) Option {
	return func(s *exportService) {
		s.metrics = m
	}
}

// WithClock overrides the time source for default file names and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *exportService) {
		s.now = now
	}
}

// NewExportService constructs a new ExportService.
func NewExportService(store storage.Storage, repo repository.ExportRepository, opts ...Option) ExportService {
	s := &exportService{
		store:  store,
		repo:   repo,
		now:    time.Now,
		tracer: otel.Tracer("csvexport/internal/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *exportService) Render(ctx context.Context, records []model.Record, keys []string) (string, error) {
	text, err := serializer.ToCSV(records, keys)
	s.metrics.Observe(SinkText, len(records), err)
	return text, err
}

func (s *exportService) Download(ctx context.Context, req exporter.Request, saver exporter.FileSaver) error {
	err := exporter.New(saver, exporter.WithClock(s.now)).Export(ctx, req)
	s.metrics.Observe(SinkDownload, len(req.Records), err)
	return err
}

func (s *exportService) Archive(ctx context.Context, req exporter.Request) (exp *model.Export, err error) {
	ctx, span := s.tracer.Start(ctx, "ExportService.Archive", trace.WithAttributes(
		attribute.Int("csvexport.rows", len(req.Records)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	key := path.Join("exports", uuid.NewString()+exporter.Extension)

	var saved exporter.File
	saver := exporter.FileSaverFunc(func(ctx context.Context, f exporter.File) error {
		if _, err := s.store.Put(ctx, key, f.Reader(), storage.PutObjectOptions{
			Size:        f.Size(),
			ContentType: f.MimeType,
			Metadata:    map[string]string{storage.OriginalFilenameMeta: f.FileName},
		}); err != nil {
			return fmt.Errorf("upload to storage: %w", err)
		}
		saved = f
		return nil
	})

	err = exporter.New(saver, exporter.WithClock(s.now)).Export(ctx, req)
	s.metrics.Observe(SinkArchive, len(req.Records), err)
	if err != nil {
		return nil, err
	}

	keys := req.Keys
	if keys == nil {
		keys = serializer.DefaultKeys(req.Records)
	}

	stored, err := s.repo.Create(ctx, &model.Export{
		ID:          uuid.NewString(),
		FileName:    saved.FileName,
		StoragePath: key,
		Size:        saved.Size(),
		ContentType: saved.MimeType,
		Rows:        len(req.Records),
		Columns:     len(keys),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	span.SetAttributes(attribute.String("csvexport.id", stored.ID))
	return stored, nil
}

// List returns paginated exports without exposing repository types.
func (s *exportService) List(ctx context.Context, limit, offset int) (*ExportListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ExportListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *exportService) Get(ctx context.Context, id string) (*model.Export, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return exp, nil
}

func (s *exportService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Export, error) {
	exp, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, exp.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return rc, exp, nil
}

func (s *exportService) PresignURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	exp, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, exp.StoragePath, expiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return url, nil
}

// Delete removes an export from storage, then deletes its record.
func (s *exportService) Delete(ctx context.Context, id string) error {
	exp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, exp)
}

// Purge stops at the first failure; exports removed before it stay removed.
func (s *exportService) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	old, err := s.repo.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for i := range old {
		if err := s.remove(ctx, &old[i]); err != nil {
			return i, fmt.Errorf("purge %s: %w", old[i].ID, err)
		}
	}
	return len(old), nil
}

func (s *exportService) remove(ctx context.Context, exp *model.Export) error {
	// Storage first; if this fails, keep the row so the object stays reachable
	if err := s.store.Delete(ctx, exp.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, exp.ID)
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"csvexport/internal/model"
	"csvexport/internal/repository"
)

// ExportPostgres is a PostgreSQL implementation of repository.ExportRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ExportPostgres struct {
	db *sql.DB
}

// NewExportPostgres creates a new ExportPostgres repository.
func NewExportPostgres(db *sql.DB) *ExportPostgres {
	return &ExportPostgres{db: db}
}

var _ repository.ExportRepository = (*ExportPostgres)(nil)

const exportColumns = `id, file_name, storage_path, size, content_type, row_count, column_count, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*model.Export, error) {
	var e model.Export
	if err := s.Scan(
		&e.ID,
		&e.FileName,
		&e.StoragePath,
		&e.Size,
		&e.ContentType,
		&e.Rows,
		&e.Columns,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new export row and returns the stored record.
func (r *ExportPostgres) Create(ctx context.Context, exp *model.Export) (*model.Export, error) {
	const q = `
		INSERT INTO exports (` + exportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + exportColumns
	row := r.db.QueryRowContext(ctx, q,
		exp.ID,
		exp.FileName,
		exp.StoragePath,
		exp.Size,
		exp.ContentType,
		exp.Rows,
		exp.Columns,
		exp.CreatedAt,
	)
	return scanExport(row)
}

// FindByID fetches a single export by its ID.
func (r *ExportPostgres) FindByID(ctx context.Context, id string) (*model.Export, error) {
	const q = `SELECT ` + exportColumns + ` FROM exports WHERE id = $1`
	return scanExport(r.db.QueryRowContext(ctx, q, id))
}

// List returns exports using LIMIT/OFFSET pagination and a total count.
func (r *ExportPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Export], error) {
	const qCount = `SELECT COUNT(*) FROM exports`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + exportColumns + `
		FROM exports
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	items, err := r.query(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Export]{Items: items, Total: total}, nil
}

// ListCreatedBefore returns exports older than cutoff, oldest first.
func (r *ExportPostgres) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Export, error) {
	const q = `
		SELECT ` + exportColumns + `
		FROM exports
		WHERE created_at < $1
		ORDER BY created_at ASC, id ASC
	`
	return r.query(ctx, q, cutoff)
}

// Delete removes an export by ID. It does not return an error if the row does not exist.
func (r *ExportPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM exports WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *ExportPostgres) query(ctx context.Context, q string, args ...any) ([]model.Export, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Export, 0)
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

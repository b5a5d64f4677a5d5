// Package sqlite implements repository.ExportRepository on SQLite for
// single-instance deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"csvexport/internal/model"
	"csvexport/internal/repository"
)

// timeLayout is fixed width so that text comparison orders timestamps correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const exportColumns = `id, file_name, storage_path, size, content_type, row_count, column_count, created_at`

// ExportSQLite stores export metadata in SQLite. Timestamps are kept as UTC text.
type ExportSQLite struct {
	db *sql.DB
}

func NewExportSQLite(db *sql.DB) *ExportSQLite {
	return &ExportSQLite{db: db}
}

var _ repository.ExportRepository = (*ExportSQLite)(nil)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*model.Export, error) {
	var (
		e       model.Export
		created string
	)
	if err := s.Scan(
		&e.ID,
		&e.FileName,
		&e.StoragePath,
		&e.Size,
		&e.ContentType,
		&e.Rows,
		&e.Columns,
		&created,
	); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	return &e, nil
}

func (r *ExportSQLite) Create(ctx context.Context, exp *model.Export) (*model.Export, error) {
	const q = `
		INSERT INTO exports (` + exportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + exportColumns
	row := r.db.QueryRowContext(ctx, q,
		exp.ID,
		exp.FileName,
		exp.StoragePath,
		exp.Size,
		exp.ContentType,
		exp.Rows,
		exp.Columns,
		formatTime(exp.CreatedAt),
	)
	return scanExport(row)
}

func (r *ExportSQLite) FindByID(ctx context.Context, id string) (*model.Export, error) {
	const q = `SELECT ` + exportColumns + ` FROM exports WHERE id = ?`
	return scanExport(r.db.QueryRowContext(ctx, q, id))
}

func (r *ExportSQLite) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Export], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports`).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT ` + exportColumns + `
		FROM exports
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	items, err := r.query(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Export]{Items: items, Total: total}, nil
}

func (r *ExportSQLite) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Export, error) {
	const q = `
		SELECT ` + exportColumns + `
		FROM exports
		WHERE created_at < ?
		ORDER BY created_at ASC, id ASC
	`
	return r.query(ctx, q, formatTime(cutoff))
}

func (r *ExportSQLite) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM exports WHERE id = ?`, id)
	return err
}

func (r *ExportSQLite) query(ctx context.Context, q string, args ...any) ([]model.Export, error) {
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

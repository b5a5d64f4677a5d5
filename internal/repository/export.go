// Package repository contains data access abstractions for export metadata.
// Implementations live in subpackages (postgres, sqlite).
package repository

import (
	"context"
	"time"

	"csvexport/internal/model"
)

// ExportRepository defines data access for export metadata using SQL queries only.
// Implementations only persist; rollback and storage cleanup live in the service.
type ExportRepository interface {
	// Create inserts a new export record. The caller provides ID and CreatedAt.
	// Returns the stored export as read back from the database.
	Create(ctx context.Context, exp *model.Export) (*model.Export, error)

	// FindByID returns an export by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Export, error)

	// List returns a page of exports, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Export], error)

	// ListCreatedBefore returns every export created strictly before cutoff, oldest first.
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Export, error)

	// Delete removes an export by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

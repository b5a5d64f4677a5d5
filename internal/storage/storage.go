// Package storage contains object storage abstractions for archived exports.
// Implementations stream their content rather than buffering whole objects.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrPresignUnsupported is returned by backends that cannot hand out download URLs.
	ErrPresignUnsupported = errors.New("presigned urls are not supported by this storage backend")
	// ErrInvalidKey is returned for keys that are empty or escape the storage root.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions describes an upload. A Size of -1 means the length is unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what a backend reports about a stored export.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage keeps archived CSV files addressed by key.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams the object; the caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a download URL valid for expiry, or ErrPresignUnsupported.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

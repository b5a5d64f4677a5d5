package storage

import (
	"fmt"

	"csvexport/internal/config"
)

// New returns the Storage selected by cfg.Driver.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.StorageMinIO, "":
		return NewMinIO(cfg.MinIO)
	case config.StorageFS:
		return NewFS(cfg.Dir)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

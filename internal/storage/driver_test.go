package storage_test

import (
	"path/filepath"
	"testing"

	"csvexport/internal/config"
	"csvexport/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")

	store, err := storage.New(config.StorageConfig{Driver: config.StorageFS, Dir: dir})
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.DirExists(t, dir)

	_, err = storage.New(config.StorageConfig{Driver: "tape"})
	assert.EqualError(t, err, "unsupported storage driver: tape")
}

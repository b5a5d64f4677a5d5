package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"csvexport/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	require.NoError(t, err)

	info, err := store.Put(ctx, "exports/a.csv", strings.NewReader("\"a\"\n1"), storage.PutObjectOptions{
		Size:        5,
		ContentType: "text/csv;charset=utf-8",
	})
	require.NoError(t, err)
	assert.Equal(t, "exports/a.csv", info.Key)
	assert.Equal(t, int64(5), info.Size)

	_, err = os.Stat(filepath.Join(dir, "exports", "a.csv"))
	require.NoError(t, err)

	rc, got, err := store.Get(ctx, "exports/a.csv")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "\"a\"\n1", string(body))
	assert.Equal(t, int64(5), got.Size)

	require.NoError(t, store.Delete(ctx, "exports/a.csv"))
	_, _, err = store.Get(ctx, "exports/a.csv")
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "exports/a.csv"))
}

func TestFS_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape.csv", "/abs.csv", "a/../../b.csv"} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), storage.PutObjectOptions{})
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)
	}
}

func TestFS_PresignUnsupported(t *testing.T) {
	store, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = store.PresignGet(context.Background(), "a.csv", time.Minute)
	assert.ErrorIs(t, err, storage.ErrPresignUnsupported)
}

func TestNewFS_RequiresDir(t *testing.T) {
	_, err := storage.NewFS("")
	assert.Error(t, err)
}

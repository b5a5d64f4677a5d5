package storage

import (
	"context"

	"csvexport/internal/exporter"
)

// OriginalFilenameMeta is the metadata key holding the file name an object was exported under.
const OriginalFilenameMeta = "original-filename"

// Saver returns an exporter.FileSaver that stores each file in store under
// its own file name.
func Saver(store Storage) exporter.FileSaver {
	return exporter.FileSaverFunc(func(ctx context.Context, f exporter.File) error {
		_, err := store.Put(ctx, f.FileName, f.Reader(), PutObjectOptions{
			Size:        f.Size(),
			ContentType: f.MimeType,
			Metadata:    map[string]string{OriginalFilenameMeta: f.FileName},
		})
		return err
	})
}

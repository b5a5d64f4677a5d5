// Package exporter turns records into a named CSV file and hands it to a FileSaver.
package exporter

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"csvexport/internal/model"
	"csvexport/internal/serializer"
)

const (
	// ContentType is the mime type attached to every exported file.
	ContentType = "text/csv;charset=utf-8"
	// Extension is appended to generated file names.
	Extension = ".csv"
)

// File is the payload handed to a FileSaver.
type File struct {
	// Content holds the file body as one or more chunks.
	Content  [][]byte
	FileName string
	MimeType string
}

// Size returns the total length of all chunks.
func (f File) Size() int64 {
	var n int64
	for _, c := range f.Content {
		n += int64(len(c))
	}
	return n
}

// Reader returns a reader over the concatenated chunks.
func (f File) Reader() io.Reader {
	readers := make([]io.Reader, len(f.Content))
	for i, c := range f.Content {
		readers[i] = bytes.NewReader(c)
	}
	return io.MultiReader(readers...)
}

// FileSaver persists or delivers a file, e.g. as a browser download or an
// object in storage.
type FileSaver interface {
	Save(ctx context.Context, f File) error
}

// FileSaverFunc adapts a function to FileSaver.
type FileSaverFunc func(ctx context.Context, f File) error

func (fn FileSaverFunc) Save(ctx context.Context, f File) error {
	return fn(ctx, f)
}

// Request describes one export.
type Request struct {
	Records []model.Record
	// FileName is generated from the current time when empty.
	FileName string
	// Keys selects and orders columns; nil selects every observed field.
	Keys []string
}

// Exporter renders requests and passes the result to its saver.
type Exporter struct {
	saver FileSaver
	now   func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock overrides the time source used for generated file names.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// New constructs an Exporter that delivers files to saver.
func New(saver FileSaver, opts ...Option) *Exporter {
	e := &Exporter{saver: saver, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders req and calls the saver exactly once. An encoding failure is
// returned unchanged and the saver is not called.
func (e *Exporter) Export(ctx context.Context, req Request) error {
	name := req.FileName
	if name == "" {
		name = DefaultFileName(e.now())
	}

	text, err := serializer.ToCSV(req.Records, req.Keys)
	if err != nil {
		return err
	}

	return e.saver.Save(ctx, File{
		Content:  [][]byte{[]byte(text)},
		FileName: name,
		MimeType: ContentType,
	})
}

// ExportAsFile is shorthand for New(saver).Export(ctx, req).
func ExportAsFile(ctx context.Context, saver FileSaver, req Request) error {
	return New(saver).Export(ctx, req)
}

// DefaultFileName returns the millisecond Unix timestamp of t followed by ".csv".
func DefaultFileName(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + Extension
}

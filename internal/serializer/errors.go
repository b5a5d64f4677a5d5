package serializer

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle indicates a structured value nested deeper than MaxDepth,
	// which in practice means it refers to itself.
	ErrCycle = errors.New("structured value is cyclic or nested too deeply")
	// ErrUnsupportedValue indicates a Go value that has no JSON form.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// EncodingError reports a cell that could not be encoded.
type EncodingError struct {
	// Row is the 0-based index of the record in the input.
	Row int
	Key string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode record %d field %q: %v", e.Row, e.Key, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

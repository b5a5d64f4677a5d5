// Package serializer renders records as CSV text.
//
// Every cell, header cells included, is written with the same JSON-style
// encoding: strings are double-quoted, numbers, booleans and null are bare
// literals, and a missing field is the bare word undefined. Nested values keep
// their JSON form, commas included, so they are not column safe.
package serializer

import (
	"strings"

	"csvexport/internal/model"
)

const (
	// Separator joins the cells of a line.
	Separator = ","
	// LineBreak joins lines. The document has no trailing line break.
	LineBreak = "\n"
)

// ToCSV renders records as a header line followed by one line per record.
// A nil keys slice selects DefaultKeys(records); any non-nil slice, even an
// empty one, is used verbatim and in order.
func ToCSV(records []model.Record, keys []string) (string, error) {
	if keys == nil {
		keys = DefaultKeys(records)
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, headerLine(keys))

	cells := make([]string, len(keys))
	for row, rec := range records {
		for i, key := range keys {
			cell, err := EncodeValue(rec.Get(key))
			if err != nil {
				return "", &EncodingError{Row: row, Key: key, Err: err}
			}
			cells[i] = cell
		}
		lines = append(lines, strings.Join(cells, Separator))
	}

	return strings.Join(lines, LineBreak), nil
}

// DefaultKeys returns the union of all records' field names in first-seen
// order: records in input order, fields in declaration order.
func DefaultKeys(records []model.Record) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

func headerLine(keys []string) string {
	cells := make([]string, len(keys))
	for i, key := range keys {
		cells[i] = quote(key)
	}
	return strings.Join(cells, Separator)
}

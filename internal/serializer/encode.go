package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"csvexport/internal/model"
)

// MaxDepth bounds the nesting of structured values.
const MaxDepth = 512

const (
	undefinedLiteral = "undefined"
	nullLiteral      = "null"
	hexDigits        = "0123456789abcdef"
)

// EncodeValue renders a single cell.
func EncodeValue(v model.Value) (string, error) {
	var b strings.Builder
	if err := encodeValue(&b, v, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeValue(b *strings.Builder, v model.Value, depth int) error {
	switch v.Kind() {
	case model.KindAbsent:
		b.WriteString(undefinedLiteral)
	case model.KindNull:
		b.WriteString(nullLiteral)
	case model.KindString:
		writeQuoted(b, v.Str())
	case model.KindNumber:
		b.WriteString(formatNumber(v.Float()))
	case model.KindBool:
		b.WriteString(strconv.FormatBool(v.Truth()))
	case model.KindStructured:
		return encodeStructured(b, v.Raw(), depth+1)
	default:
		return fmt.Errorf("%w: kind %s", ErrUnsupportedValue, v.Kind())
	}
	return nil
}

func encodeStructured(b *strings.Builder, raw any, depth int) error {
	if depth > MaxDepth {
		return ErrCycle
	}

	switch t := raw.(type) {
	case model.Record:
		return encodeRecord(b, t, depth)
	case *model.Record:
		if t == nil {
			b.WriteString(nullLiteral)
			return nil
		}
		return encodeRecord(b, *t, depth)
	case []model.Value:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			// Arrays have no holes: a missing element is written as null.
			if item.IsAbsent() {
				b.WriteString(nullLiteral)
				continue
			}
			if err := encodeValue(b, item, depth); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	case model.Value:
		return encodeValue(b, t, depth)
	case nil:
		b.WriteString(nullLiteral)
		return nil
	default:
		return encodeGo(b, raw)
	}
}

func encodeRecord(b *strings.Builder, rec model.Record, depth int) error {
	b.WriteByte('{')
	first := true
	for _, f := range rec.Fields() {
		// Objects drop missing fields entirely.
		if f.Value.IsAbsent() {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		writeQuoted(b, f.Key)
		b.WriteByte(':')
		if err := encodeValue(b, f.Value, depth); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

// encodeGo falls back to encoding/json for arbitrary Go values.
func encodeGo(b *strings.Builder, raw any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	b.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	return nil
}

// formatNumber uses the shortest decimal that round-trips, switching to
// exponent form below 1e-6 and from 1e21 up. Non-finite numbers have no
// literal form and become null.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nullLiteral
	}
	if f == 0 {
		return "0"
	}

	format := byte('f')
	if abs := math.Abs(f); abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	out := strconv.AppendFloat(nil, f, format, -1, 64)
	if format == 'e' {
		// e-07 becomes e-7
		n := len(out)
		if n >= 4 && out[n-4] == 'e' && out[n-3] == '-' && out[n-2] == '0' {
			out[n-2] = out[n-1]
			out = out[:n-1]
		}
	}
	return string(out)
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	writeQuoted(&b, s)
	return b.String()
}

// writeQuoted writes s as a JSON string literal. Only the quote, the
// backslash and control characters are escaped.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++
				continue
			}
			b.WriteString(s[start:i])
			switch c {
			case '"':
				b.WriteString(`\"`)
			case '\\':
				b.WriteString(`\\`)
			case '\b':
				b.WriteString(`\b`)
			case '\f':
				b.WriteString(`\f`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xF])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteString(s[start:i])
			b.WriteRune(utf8.RuneError)
			i += size
			start = i
			continue
		}
		i += size
	}
	b.WriteString(s[start:])
	b.WriteByte('"')
}

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindAbsent marks a field that does not exist on a record.
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	// KindStructured holds a nested Record, a []Value, or any other Go value.
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStructured:
		return "structured"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single record field. The zero Value is Absent.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	raw  any
}

func Absent() Value            { return Value{} }
func Null() Value              { return Value{kind: KindNull} }
func String(s string) Value    { return Value{kind: KindString, str: s} }
func Number(f float64) Value   { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Structured(v any) Value   { return Value{kind: KindStructured, raw: v} }
func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Str returns the string payload; it is empty unless Kind is KindString.
func (v Value) Str() string { return v.str }

// Float returns the numeric payload; it is zero unless Kind is KindNumber.
func (v Value) Float() float64 { return v.num }

// Truth returns the boolean payload; it is false unless Kind is KindBool.
func (v Value) Truth() bool { return v.b }

// Raw returns the structured payload; it is nil unless Kind is KindStructured.
func (v Value) Raw() any { return v.raw }

// FromAny converts a plain Go value into a Value.
// Maps are converted to Records with their keys sorted, since Go maps carry no order.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case Record:
		return Structured(t)
	case *Record:
		if t == nil {
			return Null()
		}
		return Structured(*t)
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int8:
		return Number(float64(t))
	case int16:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return String(t.String())
		}
		return Number(f)
	case map[string]any:
		return Structured(RecordFromMap(t))
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return Structured(items)
	case []Value:
		return Structured(t)
	default:
		return Structured(x)
	}
}

// Field is one named value of a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered mapping from field name to Value.
// Fields keep the order in which they were first set.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a Record from fields in order. A repeated key keeps its
// first position and takes the last value.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.add(f.Key, f.Value)
	}
	return r
}

// RecordFromMap builds a Record from m with keys in sorted order.
func RecordFromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var r Record
	for _, k := range keys {
		r.add(k, FromAny(m[k]))
	}
	return r
}

// Set assigns v to key, appending key if it is new.
// Set never writes to storage another copy of r can see, so copies of a
// Record are independent.
func (r *Record) Set(key string, v Value) {
	fields := make([]Field, len(r.fields), len(r.fields)+1)
	copy(fields, r.fields)
	if i, ok := r.index[key]; ok {
		fields[i].Value = v
		r.fields = fields
		return
	}
	index := make(map[string]int, len(fields)+1)
	for k, i := range r.index {
		index[k] = i
	}
	index[key] = len(fields)
	r.fields = append(fields, Field{Key: key, Value: v})
	r.index = index
}

// add is Set for a Record under construction that no other copy can see yet.
func (r *Record) add(key string, v Value) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = v
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: v})
}

// Lookup returns the value stored under key and whether the field exists.
func (r Record) Lookup(key string) (Value, bool) {
	i, ok := r.index[key]
	if !ok {
		return Absent(), false
	}
	return r.fields[i].Value, true
}

// Get returns the value stored under key, or Absent when the field is missing.
func (r Record) Get(key string) Value {
	v, _ := r.Lookup(key)
	return v
}

// Keys returns the record's field names in declaration order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the record's fields in declaration order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r Record) Len() int { return len(r.fields) }

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object, got %s", describeToken(tok))
	}
	rec, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after record")
	}
	*r = rec
	return nil
}

// UnmarshalJSON decodes any JSON value into a Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	out, err := decodeValue(dec, tok)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// decodeObject reads fields until the closing brace; the opening brace has
// already been consumed.
func decodeObject(dec *json.Decoder) (Record, error) {
	var rec Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Record{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Record{}, fmt.Errorf("expected object key, got %s", describeToken(tok))
		}
		tok, err = dec.Token()
		if err != nil {
			return Record{}, err
		}
		val, err := decodeValue(dec, tok)
		if err != nil {
			return Record{}, err
		}
		rec.add(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return Record{}, err
	}
	if rec.index == nil {
		rec.index = make(map[string]int)
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		if math.IsNaN(f) {
			return Value{}, fmt.Errorf("invalid number %q", t)
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '{':
			rec, err := decodeObject(dec)
			if err != nil {
				return Value{}, err
			}
			return Structured(rec), nil
		case '[':
			items := make([]Value, 0)
			for dec.More() {
				next, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				item, err := decodeValue(dec, next)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Structured(items), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %s", describeToken(tok))
}

func describeToken(tok json.Token) string {
	switch t := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		return string(t)
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

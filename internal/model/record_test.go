package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetKeepsFirstPosition(t *testing.T) {
	var r Record
	r.Set("b", Number(1))
	r.Set("a", Number(2))
	r.Set("b", Number(3))

	assert.Equal(t, []string{"b", "a"}, r.Keys())
	assert.Equal(t, Number(3), r.Get("b"))
	assert.Equal(t, 2, r.Len())
}

func TestRecord_CopiesAreIndependent(t *testing.T) {
	base := NewRecord(Field{Key: "a", Value: Number(1)})

	extended := base
	extended.Set("b", Number(2))
	extended.Set("a", Number(3))

	assert.Equal(t, []string{"a"}, base.Keys())
	assert.Equal(t, Number(1), base.Get("a"))
	assert.Equal(t, Absent(), base.Get("b"))
	assert.Equal(t, []string{"a", "b"}, extended.Keys())
	assert.Equal(t, Number(3), extended.Get("a"))

	// Growing the original after the copy must not leak into the copy either.
	base.Set("c", Number(4))
	assert.Equal(t, []string{"a", "b"}, extended.Keys())
	assert.Equal(t, Absent(), extended.Get("c"))
	assert.Equal(t, Number(4), base.Get("c"))
}

func TestRecord_DecodedCopiesAreIndependent(t *testing.T) {
	var decoded Record
	require.NoError(t, json.Unmarshal([]byte(`{"x":1,"y":2}`), &decoded))

	stored := FromAny(decoded)
	decoded.Set("x", String("changed"))
	decoded.Set("z", Bool(true))

	inner, ok := stored.Raw().(Record)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, inner.Keys())
	assert.Equal(t, Number(1), inner.Get("x"))
}

func TestRecord_GetMissing(t *testing.T) {
	r := NewRecord(Field{Key: "a", Value: Null()})

	v, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, KindNull, v.Kind())

	v, ok = r.Lookup("b")
	assert.False(t, ok)
	assert.True(t, v.IsAbsent())

	var zero Record
	assert.True(t, zero.Get("a").IsAbsent())
	assert.Empty(t, zero.Keys())
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"z":"s","a":1.5,"t":true,"n":null,"o":{"y":1,"x":2},"l":[1,"two"],"z":"last"}`), &r)
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "t", "n", "o", "l"}, r.Keys())
	assert.Equal(t, String("last"), r.Get("z"))
	assert.Equal(t, Number(1.5), r.Get("a"))
	assert.Equal(t, Bool(true), r.Get("t"))
	assert.Equal(t, KindNull, r.Get("n").Kind())

	nested, ok := r.Get("o").Raw().(Record)
	require.True(t, ok)
	assert.Equal(t, []string{"y", "x"}, nested.Keys())

	list, ok := r.Get("l").Raw().([]Value)
	require.True(t, ok)
	assert.Equal(t, []Value{Number(1), String("two")}, list)
}

func TestRecord_UnmarshalJSONRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[1]`, `"x"`, `null`, `3`} {
		var r Record
		assert.Error(t, json.Unmarshal([]byte(raw), &r), raw)
	}
}

func TestRecords_UnmarshalJSON(t *testing.T) {
	var rs []Record
	require.NoError(t, json.Unmarshal([]byte(`[{"a":1},{}]`), &rs))
	require.Len(t, rs, 2)
	assert.Equal(t, []string{"a"}, rs[0].Keys())
	assert.Equal(t, 0, rs[1].Len())
}

func TestValue_UnmarshalJSONOverflow(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`1e400`), &v))
	assert.True(t, math.IsInf(v.Float(), 1))
}

func TestFromAny(t *testing.T) {
	assert.Equal(t, Null(), FromAny(nil))
	assert.Equal(t, String("x"), FromAny("x"))
	assert.Equal(t, Bool(true), FromAny(true))
	assert.Equal(t, Number(3), FromAny(3))
	assert.Equal(t, Number(3), FromAny(uint8(3)))
	assert.Equal(t, Number(2.5), FromAny(json.Number("2.5")))

	m := FromAny(map[string]any{"b": 1, "a": "x"})
	require.Equal(t, KindStructured, m.Kind())
	assert.Equal(t, []string{"a", "b"}, m.Raw().(Record).Keys())

	list := FromAny([]any{1, nil})
	assert.Equal(t, []Value{Number(1), Null()}, list.Raw())

	type custom struct{ N int }
	assert.Equal(t, Structured(custom{N: 1}), FromAny(custom{N: 1}))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "absent", KindAbsent.String())
	assert.Equal(t, "structured", KindStructured.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}

package core

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKeepsFieldOrder(t *testing.T) {
	r := NewRecord()
	r.Set("last_name", "Tizio")
	r.Set("first_name", "Roberto")
	r.Set("id", int64(7))
	r.Set("last_name", "Caio")

	assert.Equal(t, []string{"last_name", "first_name", "id"}, r.Fields())
	assert.Equal(t, []any{"Caio", "Roberto", int64(7)}, r.Values())
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Has("id"))
	assert.False(t, r.Has("email"))
}

func TestRecordZeroValueIsUsable(t *testing.T) {
	var r Record
	r.Set("a", 1)
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestRecordClone(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)

	c := r.Clone()
	c.Set("b", 2)
	c.Set("a", 3)

	assert.Equal(t, []string{"a"}, r.Fields())
	v, _ := r.Get("a")
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"a", "b"}, c.Fields())
}

func TestNilRecord(t *testing.T) {
	var r *Record
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Fields())
	assert.False(t, r.Has("a"))
	assert.Equal(t, 0, r.Clone().Len())
}

func TestRecordSetOrder(t *testing.T) {
	s := NewRecordSet()
	s.Add("Roberto", NewRecord())
	s.Add("Anna", NewRecord())

	replacement := NewRecord()
	replacement.Set("x", 1)
	s.Add("Roberto", replacement)

	assert.Equal(t, []string{"Roberto", "Anna"}, s.Names())
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get("Roberto")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	_, ok = s.Get("Nobody")
	assert.False(t, ok)
}

func TestHandleIsReadOnlyCopy(t *testing.T) {
	r := NewRecord()
	r.Set("first_name", "Roberto")
	r.Set("id", int64(42))

	h := NewHandle("Roberto", r)
	r.Set("first_name", "changed")

	assert.Equal(t, "Roberto", h.Name())
	assert.Equal(t, "Roberto", h.String("first_name"))
	assert.Equal(t, "42", h.String("id"))
	assert.Equal(t, "", h.String("missing"))

	id, err := h.Int64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = h.Int64("first_name")
	assert.Error(t, err)
	_, err = h.Int64("missing")
	assert.Error(t, err)

	m := h.Map()
	m["first_name"] = "mutated"
	assert.Equal(t, "Roberto", h.String("first_name"))
	assert.Equal(t, []string{"first_name", "id"}, h.Fields())
	assert.Equal(t, 2, h.Len())
}

func TestHandleStringBytesAndNull(t *testing.T) {
	r := NewRecord()
	r.Set("raw", []byte("abc"))
	r.Set("none", nil)
	h := NewHandle("x", r)

	assert.Equal(t, "abc", h.String("raw"))
	assert.Equal(t, "", h.String("none"))
}

func TestHandleStringBinaryUUID(t *testing.T) {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("web"))
	r := NewRecord()
	r.Set("id", id[:])
	h := NewHandle("web", r)

	assert.Equal(t, id.String(), h.String("id"))
}

func TestHandleInt64Widths(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{name: "int8", value: int8(-8), want: -8},
		{name: "int16", value: int16(1600), want: 1600},
		{name: "uint8", value: uint8(8), want: 8},
		{name: "uint16", value: uint16(16), want: 16},
		{name: "uint", value: uint(7), want: 7},
		{name: "uint64", value: uint64(math.MaxInt32), want: math.MaxInt32},
		{name: "string", value: "42", want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord()
			r.Set("n", tt.value)
			got, err := NewHandle("x", r).Int64("n")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	r := NewRecord()
	r.Set("n", uint64(math.MaxUint64))
	_, err := NewHandle("x", r).Int64("n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows int64")
}

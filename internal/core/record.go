package core

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Record is an ordered field map of one fixture: field name -> scalar value.
// Fields keep the order in which they were first set.
type Record struct {
	fields []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores value under field. A new field is appended at the end; an existing
// field keeps its position.
func (r *Record) Set(field string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Get returns the value of field and whether it is present.
func (r *Record) Get(field string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether field is present.
func (r *Record) Has(field string) bool {
	_, ok := r.Get(field)
	return ok
}

// Fields returns the field names in order.
func (r *Record) Fields() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Values returns the values in field order.
func (r *Record) Values() []any {
	if r == nil {
		return nil
	}
	out := make([]any, 0, len(r.fields))
	for _, f := range r.fields {
		out = append(out, r.values[f])
	}
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Clone returns a copy that can be modified without touching r.
func (r *Record) Clone() *Record {
	c := &Record{
		fields: make([]string, 0, r.Len()),
		values: make(map[string]any, r.Len()),
	}
	if r == nil {
		return c
	}
	for _, f := range r.fields {
		c.Set(f, r.values[f])
	}
	return c
}

// RecordSet is an ordered mapping from symbolic record name to record.
type RecordSet struct {
	names   []string
	records map[string]*Record
}

// NewRecordSet returns an empty record set.
func NewRecordSet() *RecordSet {
	return &RecordSet{records: make(map[string]*Record)}
}

// Add stores rec under name. Re-adding a name replaces the record in place.
func (s *RecordSet) Add(name string, rec *Record) {
	if s.records == nil {
		s.records = make(map[string]*Record)
	}
	if _, ok := s.records[name]; !ok {
		s.names = append(s.names, name)
	}
	s.records[name] = rec
}

// Get returns the record stored under name.
func (s *RecordSet) Get(name string) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	rec, ok := s.records[name]
	return rec, ok
}

// Names returns the record names in order.
func (s *RecordSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Handle is a read-only view of a record as it was sent to the database,
// including any generated keys.
type Handle struct {
	name   string
	record *Record
}

// NewHandle wraps a copy of rec under name.
func NewHandle(name string, rec *Record) *Handle {
	return &Handle{name: name, record: rec.Clone()}
}

// Name returns the symbolic record name.
func (h *Handle) Name() string {
	return h.name
}

// Get returns the value of field.
func (h *Handle) Get(field string) (any, bool) {
	return h.record.Get(field)
}

// String returns field formatted as a string, or "" when absent or NULL.
// A 16-byte value is a binary UUID and is formatted as one.
func (h *Handle) String(field string) string {
	v, ok := h.record.Get(field)
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		if id, err := uuid.FromBytes(x); err == nil {
			return id.String()
		}
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// Int64 returns field as an integer.
func (h *Handle) Int64(field string) (int64, error) {
	v, ok := h.record.Get(field)
	if !ok {
		return 0, fmt.Errorf("record %q has no field %q", h.name, field)
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		return uintToInt64(h.name, field, uint64(x))
	case uint64:
		return uintToInt64(h.name, field, x)
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("record %q field %q: %T is not an integer", h.name, field, v)
	}
}

func uintToInt64(name, field string, x uint64) (int64, error) {
	if x > math.MaxInt64 {
		return 0, fmt.Errorf("record %q field %q: %d overflows int64", name, field, x)
	}
	return int64(x), nil
}

// Fields returns the field names in insert order.
func (h *Handle) Fields() []string {
	return h.record.Fields()
}

// Len returns the number of fields.
func (h *Handle) Len() int {
	return h.record.Len()
}

// Map returns a copy of the fields as a plain map.
func (h *Handle) Map() map[string]any {
	out := make(map[string]any, h.record.Len())
	for _, f := range h.record.fields {
		out[f] = h.record.values[f]
	}
	return out
}

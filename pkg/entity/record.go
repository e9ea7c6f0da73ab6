package entity

import (
	"encoding/json"
	"sort"
	"strings"
)

// Record is a map-backed Entity. Reading a property that was never written
// returns nil without error, so a Record behaves like a row of arbitrary
// columns.
type Record struct {
	typeName string
	values   map[string]any
}

// NewRecord constructs a record of the named type seeded with a copy of values.
func NewRecord(typeName string, values map[string]any) *Record {
	r := &Record{
		typeName: typeName,
		values:   make(map[string]any, len(values)),
	}
	for key, value := range values {
		r.values[key] = value
	}
	return r
}

// RecordType returns a Type whose factory produces empty Records.
func RecordType(name string) Type {
	return Type{
		Name: name,
		New: func() Entity {
			return NewRecord(name, nil)
		},
	}
}

// TypeName returns the type the record was created for.
func (r *Record) TypeName() string {
	return r.typeName
}

func (r *Record) Get(property string) (any, error) {
	return r.values[property], nil
}

func (r *Record) Set(property string, value any) error {
	if strings.TrimSpace(property) == "" {
		return &PropertyError{Property: property, Err: ErrUnknownProperty}
	}
	if r.values == nil {
		r.values = make(map[string]any)
	}
	r.values[property] = value
	return nil
}

// Values returns a copy of the record's properties.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for key, value := range r.values {
		out[key] = value
	}
	return out
}

// String renders the record as type{key=value ...} with keys sorted.
func (r *Record) String() string {
	keys := make([]string, 0, len(r.values))
	for key := range r.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(r.typeName)
	b.WriteByte('{')
	for idx, key := range keys {
		if idx > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(FormatValue(r.values[key]))
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON encodes the record's properties as a JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.values)
}

package table

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/goccy/go-yaml"
)

// Field is one named cell of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered selection of cells from one row.
type Record struct {
	Catalog string
	Key     string
	Fields  []Field
}

// Get returns the named cell.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Float returns the named numeric cell, NaN when missing or text.
func (r Record) Float(name string) float64 {
	v, ok := r.Get(name)
	if !ok {
		return math.NaN()
	}
	f, _ := v.Float()
	return f
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Map returns the fields keyed by name.
func (r Record) Map() map[string]Value {
	m := make(map[string]Value, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as an object, preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the record as an ordered mapping.
func (r Record) MarshalYAML() (any, error) {
	items := make(yaml.MapSlice, 0, len(r.Fields))
	for _, f := range r.Fields {
		v, err := f.Value.MarshalYAML()
		if err != nil {
			return nil, err
		}
		items = append(items, yaml.MapItem{Key: f.Name, Value: v})
	}
	return items, nil
}

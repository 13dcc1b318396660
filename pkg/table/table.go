// Package table provides the immutable, column-major catalog table shared by
// every accessor. A Table is built once (from CSV or from the local cache),
// optionally transformed at load time, and is read-only afterwards: all
// transforming methods return a new Table and leave the receiver untouched.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/kepmap/pkg/errors"
)

// Column describes one named column.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// column is the storage of one column; exactly one slice is populated.
type column struct {
	Column
	floats []float64
	texts  []string
}

func (c column) value(i int) Value {
	if c.Kind == Text {
		return TextValue(c.texts[i])
	}
	return FloatValue(c.floats[i])
}

// Table is an ordered collection of rows keyed by a unique identifier.
type Table struct {
	name    string
	key     string
	columns []column
	byName  map[string]int
	keys    []string
	rows    map[string]int
}

// Name returns the catalog name the table was loaded from.
func (t *Table) Name() string { return t.name }

// Key returns the name of the key column.
func (t *Table) Key() string { return t.key }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.keys) }

// Columns returns the column descriptors in order.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Column
	}
	return cols
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column descriptor.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i].Column, true
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Keys returns the row keys in row order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Row looks up a row by its key.
func (t *Table) Row(key string) (Row, bool) {
	i, ok := t.rows[key]
	if !ok {
		return Row{}, false
	}
	return Row{t: t, i: i}, true
}

// RowAt returns the i-th row.
func (t *Table) RowAt(i int) Row {
	return Row{t: t, i: i}
}

// FloatColumn returns a copy of a numeric column.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	i, ok := t.byName[name]
	if !ok || t.columns[i].Kind != Float {
		return nil, errors.NewPropertyNotFoundError(t.name, "", name)
	}
	return append([]float64(nil), t.columns[i].floats...), nil
}

// Values returns a copy of any column as cells.
func (t *Table) Values(name string) ([]Value, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, errors.NewPropertyNotFoundError(t.name, "", name)
	}
	out := make([]Value, t.Len())
	for r := range out {
		out[r] = t.columns[i].value(r)
	}
	return out, nil
}

// WithFloatColumn returns a new table where the named numeric column is
// replaced, or appended when absent. Existing column storage is shared.
func (t *Table) WithFloatColumn(name string, values []float64) (*Table, error) {
	if len(values) != t.Len() {
		return nil, errors.NewValidationError(name, len(values),
			fmt.Sprintf("column has %d values, table has %d rows", len(values), t.Len()))
	}
	if name == t.key {
		return nil, errors.NewValidationError(name, nil, "key column cannot be replaced")
	}

	col := column{Column: Column{Name: name, Kind: Float}, floats: append([]float64(nil), values...)}
	out := &Table{
		name:    t.name,
		key:     t.key,
		columns: append([]column(nil), t.columns...),
		byName:  make(map[string]int, len(t.byName)+1),
		keys:    t.keys,
		rows:    t.rows,
	}
	for k, v := range t.byName {
		out.byName[k] = v
	}
	if i, ok := out.byName[name]; ok {
		out.columns[i] = col
	} else {
		out.byName[name] = len(out.columns)
		out.columns = append(out.columns, col)
	}
	return out, nil
}

// Filter returns a new table holding the rows for which keep is true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	var idx []int
	for i := range t.keys {
		if keep(Row{t: t, i: i}) {
			idx = append(idx, i)
		}
	}

	out := &Table{
		name:    t.name,
		key:     t.key,
		columns: make([]column, len(t.columns)),
		byName:  t.byName,
		keys:    make([]string, len(idx)),
		rows:    make(map[string]int, len(idx)),
	}
	for c, src := range t.columns {
		dst := column{Column: src.Column}
		if src.Kind == Text {
			dst.texts = make([]string, len(idx))
			for r, i := range idx {
				dst.texts[r] = src.texts[i]
			}
		} else {
			dst.floats = make([]float64, len(idx))
			for r, i := range idx {
				dst.floats[r] = src.floats[i]
			}
		}
		out.columns[c] = dst
	}
	for r, i := range idx {
		out.keys[r] = t.keys[i]
		out.rows[t.keys[i]] = r
	}
	return out
}

// Equal reports whether two tables hold the same name, key, columns and cells.
func Equal(a, b *Table) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.name != b.name || a.key != b.key || a.Len() != b.Len() || len(a.columns) != len(b.columns) {
		return false
	}
	for c := range a.columns {
		if a.columns[c].Column != b.columns[c].Column {
			return false
		}
	}
	for r := range a.keys {
		if a.keys[r] != b.keys[r] {
			return false
		}
		for c := range a.columns {
			if !a.columns[c].value(r).Equal(b.columns[c].value(r)) {
				return false
			}
		}
	}
	return true
}

// FormatKey renders a key cell the way rows are indexed: integers without a
// decimal point, text trimmed. NaN keys render empty.
func FormatKey(v Value) string {
	if v.Kind() == Text {
		return strings.TrimSpace(v.String())
	}
	f, _ := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Row is a view of one table row.
type Row struct {
	t *Table
	i int
}

// Key returns the row key.
func (r Row) Key() string {
	return r.t.keys[r.i]
}

// Catalog returns the name of the table the row belongs to.
func (r Row) Catalog() string {
	return r.t.name
}

// Get returns one cell or a PropertyNotFoundError.
func (r Row) Get(name string) (Value, error) {
	c, ok := r.t.byName[name]
	if !ok {
		return Value{}, errors.NewPropertyNotFoundError(r.t.name, r.Key(), name)
	}
	return r.t.columns[c].value(r.i), nil
}

// Float returns a numeric cell; text columns are reported as missing properties.
func (r Row) Float(name string) (float64, error) {
	v, err := r.Get(name)
	if err != nil {
		return math.NaN(), err
	}
	f, ok := v.Float()
	if !ok {
		return math.NaN(), errors.NewPropertyNotFoundError(r.t.name, r.Key(), name+" (numeric)")
	}
	return f, nil
}

// Select returns the named cells in the requested order. Any unknown column
// fails the whole selection.
func (r Row) Select(names ...string) (Record, error) {
	rec := Record{Catalog: r.t.name, Key: r.Key(), Fields: make([]Field, 0, len(names))}
	for _, name := range names {
		v, err := r.Get(name)
		if err != nil {
			return Record{}, err
		}
		rec.Fields = append(rec.Fields, Field{Name: name, Value: v})
	}
	return rec, nil
}

// Record returns every cell of the row.
func (r Row) Record() Record {
	rec := Record{Catalog: r.t.name, Key: r.Key(), Fields: make([]Field, len(r.t.columns))}
	for c, col := range r.t.columns {
		rec.Fields[c] = Field{Name: col.Name, Value: col.value(r.i)}
	}
	return rec
}

package table

import (
	"fmt"
	"math"

	"github.com/agentstation/kepmap/pkg/errors"
)

// Builder assembles a Table row by row for a fixed column layout.
type Builder struct {
	name    string
	key     string
	columns []column
	keyCol  int
	seen    map[string]struct{}
	keys    []string
	skipped int
}

// NewBuilder starts a table named name, indexed by the key column.
func NewBuilder(name, key string, columns []Column) (*Builder, error) {
	b := &Builder{
		name:    name,
		key:     key,
		columns: make([]column, len(columns)),
		keyCol:  -1,
		seen:    make(map[string]struct{}),
	}
	names := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		if _, dup := names[c.Name]; dup {
			return nil, errors.NewValidationError("columns", c.Name, "duplicate column name")
		}
		names[c.Name] = struct{}{}
		b.columns[i] = column{Column: c}
		if c.Name == key {
			b.keyCol = i
		}
	}
	if b.keyCol < 0 {
		return nil, errors.NewValidationError("key", key, fmt.Sprintf("catalog %s has no key column", name))
	}
	return b, nil
}

// Append adds one row. Rows with an empty key or a key already seen are
// skipped (first occurrence wins) and reported by Skipped.
func (b *Builder) Append(cells []Value) error {
	if len(cells) != len(b.columns) {
		return errors.NewValidationError("row", len(cells),
			fmt.Sprintf("expected %d cells", len(b.columns)))
	}
	key := FormatKey(cells[b.keyCol])
	if key == "" {
		b.skipped++
		return nil
	}
	if _, dup := b.seen[key]; dup {
		b.skipped++
		return nil
	}
	b.seen[key] = struct{}{}
	b.keys = append(b.keys, key)

	for i := range b.columns {
		c := &b.columns[i]
		v := cells[i]
		if c.Kind == Text {
			c.texts = append(c.texts, v.String())
			continue
		}
		f, ok := v.Float()
		if !ok {
			f = math.NaN()
		}
		c.floats = append(c.floats, f)
	}
	return nil
}

// Skipped returns the number of rows dropped for missing or duplicate keys.
func (b *Builder) Skipped() int {
	return b.skipped
}

// Build finalizes the table. The builder must not be used afterwards.
func (b *Builder) Build() *Table {
	t := &Table{
		name:    b.name,
		key:     b.key,
		columns: b.columns,
		byName:  make(map[string]int, len(b.columns)),
		keys:    b.keys,
		rows:    make(map[string]int, len(b.keys)),
	}
	for i, c := range b.columns {
		t.byName[c.Name] = i
		if c.Kind == Text && c.texts == nil {
			t.columns[i].texts = []string{}
		}
		if c.Kind == Float && c.floats == nil {
			t.columns[i].floats = []float64{}
		}
	}
	for i, k := range b.keys {
		t.rows[k] = i
	}
	return t
}

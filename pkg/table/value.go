package table

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind is the storage type of a column.
type Kind int

const (
	// Float columns hold numbers; missing cells are NaN.
	Float Kind = iota
	// Text columns hold strings; missing cells are empty.
	Text
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "float"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) Kind {
	if s == "text" {
		return Text
	}
	return Float
}

// Value is one cell. NaN is a valid in-band float value meaning "not cataloged".
type Value struct {
	kind Kind
	num  float64
	text string
}

// FloatValue returns a numeric cell.
func FloatValue(f float64) Value {
	return Value{kind: Float, num: f}
}

// TextValue returns a text cell.
func TextValue(s string) Value {
	return Value{kind: Text, text: s}
}

// NaN returns a missing numeric cell.
func NaN() Value {
	return FloatValue(math.NaN())
}

// Kind returns the cell type.
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the numeric value; text cells report false.
func (v Value) Float() (float64, bool) {
	if v.kind != Float {
		return math.NaN(), false
	}
	return v.num, true
}

// IsNaN reports a missing numeric cell.
func (v Value) IsNaN() bool {
	return v.kind == Float && math.IsNaN(v.num)
}

// String renders the cell; NaN renders as "NaN".
func (v Value) String() string {
	if v.kind == Text {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// Equal compares two cells, treating NaN as equal to NaN.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == Text {
		return v.text == o.text
	}
	if math.IsNaN(v.num) || math.IsNaN(o.num) {
		return math.IsNaN(v.num) && math.IsNaN(o.num)
	}
	return v.num == o.num
}

// MarshalJSON encodes NaN as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == Text {
		return json.Marshal(v.text)
	}
	if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.num)
}

// MarshalYAML encodes NaN as null.
func (v Value) MarshalYAML() (any, error) {
	if v.kind == Text {
		return v.text, nil
	}
	if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return nil, nil
	}
	return v.num, nil
}

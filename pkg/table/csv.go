package table

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/kepmap/pkg/errors"
)

// ParseCSV reads a comma-separated catalog with a header row. Lines starting
// with '#' are comments. A column is numeric when every non-empty cell parses
// as a float; empty numeric cells become NaN.
func ParseCSV(name, key string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewParseError("csv", name, "empty catalog", nil)
	}
	if err != nil {
		return nil, errors.WrapParse("csv", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", name, err)
	}

	columns := make([]Column, len(header))
	for c, h := range header {
		columns[c] = Column{Name: h, Kind: inferKind(records, c)}
	}

	b, err := NewBuilder(name, key, columns)
	if err != nil {
		return nil, err
	}

	cells := make([]Value, len(columns))
	for line, rec := range records {
		if len(rec) != len(columns) {
			return nil, &errors.ParseError{
				Format:  "csv",
				File:    name,
				Line:    line + 2,
				Message: "wrong number of fields",
			}
		}
		for c, raw := range rec {
			cells[c] = parseCell(columns[c].Kind, raw)
		}
		if err := b.Append(cells); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// inferKind returns Float when every non-empty cell in column c is numeric.
func inferKind(records [][]string, c int) Kind {
	for _, rec := range records {
		if c >= len(rec) {
			continue
		}
		s := strings.TrimSpace(rec[c])
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return Text
		}
	}
	return Float
}

func parseCell(kind Kind, raw string) Value {
	s := strings.TrimSpace(raw)
	if kind == Text {
		return TextValue(s)
	}
	if s == "" {
		return FloatValue(math.NaN())
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return FloatValue(math.NaN())
	}
	return FloatValue(f)
}

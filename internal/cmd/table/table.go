// Package table converts catalog results into rows for the CLI table formatter.
package table

import (
	"strconv"

	"github.com/agentstation/kepmap/pkg/catalogs"
	"github.com/agentstation/kepmap/pkg/distributions"
	kt "github.com/agentstation/kepmap/pkg/table"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// FormatValue renders a cell, "-" for a missing value.
func FormatValue(v kt.Value) string {
	if v.IsNaN() {
		return "-"
	}
	return v.String()
}

// RecordToTableData renders a record as property/value pairs.
func RecordToTableData(rec kt.Record) Data {
	rows := make([][]string, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		rows = append(rows, []string{f.Name, FormatValue(f.Value)})
	}
	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// CatalogsToTableData renders catalog status. Wide adds the cache file details.
func CatalogsToTableData(status []catalogs.Status, wide bool) Data {
	headers := []string{"Name", "Key", "Loaded", "Cached", "Rows"}
	if wide {
		headers = append(headers, "Columns", "Fetched", "Path")
	}

	rows := make([][]string, 0, len(status))
	for _, s := range status {
		count := "-"
		if s.Info != nil {
			count = strconv.Itoa(s.Info.Rows)
		}
		row := []string{s.Name, s.Key, yesNo(s.Loaded), yesNo(s.Cached), count}
		if wide {
			columns, fetched, path := "-", "-", "-"
			if s.Info != nil {
				columns = strconv.Itoa(s.Info.Columns)
				fetched = s.Info.FetchedAt.Format("2006-01-02 15:04")
				path = s.Info.Path
			}
			row = append(row, columns, fetched, path)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// DistributionToTableData renders a distribution and its central interval.
func DistributionToTableData(d distributions.DoubleGauss) Data {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"name", d.Name},
			{"mu", f(d.Mu)},
			{"siglo", f(d.SigLo)},
			{"sighi", f(d.SigHi)},
			{"mean", f(d.Mean())},
			{"16%", f(d.Quantile(0.15865525393145707))},
			{"84%", f(d.Quantile(0.8413447460685429))},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Package candidates looks up rows of the Kepler Object of Interest table by
// any spelling of a KOI identifier.
//
// The table is keyed by canonical candidate name (K#####.##). Every lookup
// normalizes its identifier with package koi first, so 5, "KOI-5" and
// "K00005.01" address the same row.
package candidates

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/agentstation/kepmap/internal/metrics"
	"github.com/agentstation/kepmap/pkg/catalogs"
	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/koi"
	"github.com/agentstation/kepmap/pkg/table"
)

// Column names used by the accessor.
const (
	KeyColumn   = "kepoi_name"
	StarColumn  = "kepid"
	CountColumn = "koi_count"
	RAColumn    = "ra"
	DecColumn   = "dec"
)

// Definition returns the catalog definition of a KOI table. The magnitude
// correction runs once when the table is loaded.
func Definition(name string) catalogs.Definition {
	if name == "" {
		name = constants.CandidateTable
	}
	return catalogs.Definition{
		Name:        name,
		Key:         KeyColumn,
		Description: "Kepler Objects of Interest",
		Prepare:     CorrectMagnitudes,
	}
}

// Loader returns a loaded catalog table by name.
type Loader interface {
	Load(ctx context.Context, name string) (*table.Table, error)
}

// Accessor reads the candidate table.
type Accessor struct {
	loader  Loader
	catalog string
	metrics *metrics.Metrics
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithMetrics records lookup durations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Accessor) { a.metrics = m }
}

// New returns an accessor over the named catalog.
func New(loader Loader, catalog string, opts ...Option) *Accessor {
	if catalog == "" {
		catalog = constants.CandidateTable
	}
	a := &Accessor{loader: loader, catalog: catalog}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Catalog returns the name of the table the accessor reads.
func (a *Accessor) Catalog() string {
	return a.catalog
}

// Table returns the loaded candidate table.
func (a *Accessor) Table(ctx context.Context) (*table.Table, error) {
	return a.loader.Load(ctx, a.catalog)
}

// Row returns the candidate row for id. Identifiers that do not normalize, or
// that normalize to a candidate absent from the table, are reported as
// *errors.UnknownIdentifierError; the former also match ErrInvalidIdentifier.
func (a *Accessor) Row(ctx context.Context, id any) (row table.Row, err error) {
	defer a.observe(time.Now(), &err)

	name, err := koi.Parse(id)
	if err != nil {
		return table.Row{}, errors.NewUnknownIdentifierError(a.catalog, fmt.Sprint(id), err)
	}

	t, err := a.Table(ctx)
	if err != nil {
		return table.Row{}, err
	}

	row, ok := t.Row(name.String())
	if !ok {
		return table.Row{}, errors.NewUnknownIdentifierError(a.catalog, name.String(), nil)
	}
	return row, nil
}

// Record returns the named columns of a candidate, or every column when none
// are given.
func (a *Accessor) Record(ctx context.Context, id any, columns ...string) (table.Record, error) {
	row, err := a.Row(ctx, id)
	if err != nil {
		return table.Record{}, err
	}
	if len(columns) == 0 {
		return row.Record(), nil
	}
	return row.Select(columns...)
}

// Property returns one column of a candidate.
func (a *Accessor) Property(ctx context.Context, id any, prop string) (table.Value, error) {
	row, err := a.Row(ctx, id)
	if err != nil {
		return table.Value{}, err
	}
	return row.Get(prop)
}

// Properties returns several columns of a candidate; any unknown column fails
// the whole lookup.
func (a *Accessor) Properties(ctx context.Context, id any, props ...string) (table.Record, error) {
	if len(props) == 0 {
		return table.Record{}, errors.NewValidationError("properties", props, "at least one property is required")
	}
	return a.Record(ctx, id, props...)
}

// RaDec returns the sky position of a candidate in decimal degrees.
func (a *Accessor) RaDec(ctx context.Context, id any) (ra, dec float64, err error) {
	rec, err := a.Properties(ctx, id, RAColumn, DecColumn)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	return rec.Float(RAColumn), rec.Float(DecColumn), nil
}

// Magnitudes returns the apparent magnitudes of a candidate's host star.
// With no bands DefaultBands are used. Each band is reported under its
// catalog name and its aliases: j as J, h as H, k as K and Ks, kep as Kepler.
// Bands may be given by alias.
func (a *Accessor) Magnitudes(ctx context.Context, id any, bands ...string) (table.Record, error) {
	if len(bands) == 0 {
		bands = DefaultBands
	}

	row, err := a.Row(ctx, id)
	if err != nil {
		return table.Record{}, err
	}

	rec := table.Record{Catalog: a.catalog, Key: row.Key()}
	seen := make(map[string]bool)
	add := func(name string, v table.Value) {
		if !seen[name] {
			seen[name] = true
			rec.Fields = append(rec.Fields, table.Field{Name: name, Value: v})
		}
	}

	for _, band := range bands {
		b := canonicalBand(band)
		v, err := row.Get(MagnitudeColumn(b))
		if err != nil {
			return table.Record{}, err
		}
		add(b, v)
		for _, alias := range bandAliases[b] {
			add(alias, v)
		}
	}
	return rec, nil
}

// Magnitude returns the apparent magnitude in one band, which may be an alias.
func (a *Accessor) Magnitude(ctx context.Context, id any, band string) (float64, error) {
	row, err := a.Row(ctx, id)
	if err != nil {
		return math.NaN(), err
	}
	return row.Float(MagnitudeColumn(band))
}

// KepID returns the KIC number of a candidate's host star.
func (a *Accessor) KepID(ctx context.Context, id any) (int, error) {
	return a.intProperty(ctx, id, StarColumn)
}

// CandidateCount returns the number of candidates cataloged for the host star.
func (a *Accessor) CandidateCount(ctx context.Context, id any) (int, error) {
	return a.intProperty(ctx, id, CountColumn)
}

// intProperty reads an integer column; NaN cannot be an int and is reported
// as a missing property.
func (a *Accessor) intProperty(ctx context.Context, id any, column string) (int, error) {
	row, err := a.Row(ctx, id)
	if err != nil {
		return 0, err
	}
	f, err := row.Float(column)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, errors.NewPropertyNotFoundError(a.catalog, row.Key(), column)
	}
	return int(f), nil
}

func (a *Accessor) observe(start time.Time, err *error) {
	a.metrics.ObserveLookup("candidates", start, *err)
}

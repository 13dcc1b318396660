// Package stellar looks up rows of the Kepler stellar properties table.
//
// The table is keyed by KIC number. Lookups accept either a KIC number or any
// KOI identifier; a KOI identifier is resolved to its host star through the
// candidate table first, and the identifier is read as a KIC number only when
// that resolution fails.
package stellar

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/kepmap/internal/metrics"
	"github.com/agentstation/kepmap/pkg/candidates"
	"github.com/agentstation/kepmap/pkg/catalogs"
	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/table"
)

// Column names used by the accessor.
const (
	KeyColumn  = "kepid"
	MassColumn = "mass"
)

// Definition returns the catalog definition of a stellar table. Rows without
// a cataloged mass are dropped at load time.
func Definition(name string) catalogs.Definition {
	if name == "" {
		name = constants.StellarTable
	}
	return catalogs.Definition{
		Name:        name,
		Key:         KeyColumn,
		Description: "Kepler stellar properties",
		Prepare:     DropMissing(MassColumn),
	}
}

// DropMissing returns a PrepareFunc removing rows whose column is NaN. Tables
// without the column are returned unchanged.
func DropMissing(column string) catalogs.PrepareFunc {
	return func(t *table.Table) (*table.Table, error) {
		if !t.HasColumn(column) {
			return t, nil
		}
		return t.Filter(func(r table.Row) bool {
			f, err := r.Float(column)
			return err == nil && !math.IsNaN(f)
		}), nil
	}
}

// Loader returns a loaded catalog table by name.
type Loader interface {
	Load(ctx context.Context, name string) (*table.Table, error)
}

// Accessor reads the stellar table.
type Accessor struct {
	loader     Loader
	catalog    string
	candidates *candidates.Accessor
	metrics    *metrics.Metrics
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithCandidates enables resolving KOI identifiers through the candidate table.
func WithCandidates(c *candidates.Accessor) Option {
	return func(a *Accessor) { a.candidates = c }
}

// WithMetrics records lookup durations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Accessor) { a.metrics = m }
}

// New returns an accessor over the named catalog.
func New(loader Loader, catalog string, opts ...Option) *Accessor {
	if catalog == "" {
		catalog = constants.StellarTable
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

// Table returns the loaded stellar table.
func (a *Accessor) Table(ctx context.Context) (*table.Table, error) {
	return a.loader.Load(ctx, a.catalog)
}

// Resolve finds the stellar row of id.
//
// A KOI identifier that resolves to a host star missing from the stellar
// table, with no direct match either, is a *errors.PropertyNotFoundError. An
// identifier matching neither path is a *errors.UnknownIdentifierError.
// Catalog load failures are returned as is.
func (a *Accessor) Resolve(ctx context.Context, id any) (row table.Row, err error) {
	defer a.observe(time.Now(), &err)

	t, err := a.Table(ctx)
	if err != nil {
		return table.Row{}, err
	}

	resolved := ""
	if a.candidates != nil {
		kepid, err := a.candidates.KepID(ctx, id)
		switch {
		case err == nil:
			resolved = strconv.Itoa(kepid)
			if row, ok := t.Row(resolved); ok {
				return row, nil
			}
		case !errors.IsUnknownIdentifier(err) && !errors.IsPropertyNotFound(err):
			return table.Row{}, err
		}
	}

	if key, ok := directKey(id); ok {
		if row, ok := t.Row(key); ok {
			return row, nil
		}
	}

	if resolved != "" {
		return table.Row{}, errors.NewPropertyNotFoundError(a.catalog, resolved, "")
	}
	return table.Row{}, errors.NewUnknownIdentifierError(a.catalog, fmt.Sprint(id), nil)
}

// Row is an alias of Resolve.
func (a *Accessor) Row(ctx context.Context, id any) (table.Row, error) {
	return a.Resolve(ctx, id)
}

// Properties returns the named columns of the resolved star, or every column
// when none are given. Any unknown column fails the whole lookup.
func (a *Accessor) Properties(ctx context.Context, id any, props ...string) (table.Record, error) {
	row, err := a.Resolve(ctx, id)
	if err != nil {
		return table.Record{}, err
	}
	if len(props) == 0 {
		return row.Record(), nil
	}
	return row.Select(props...)
}

// Property returns one column of the resolved star.
func (a *Accessor) Property(ctx context.Context, id any, prop string) (table.Value, error) {
	row, err := a.Resolve(ctx, id)
	if err != nil {
		return table.Value{}, err
	}
	return row.Get(prop)
}

var kicForm = regexp.MustCompile(`^(?:[Kk][Ii][Cc][-_ ]?)?(\d+)$`)

// directKey reads id as a KIC number: an integer, a float with no fraction,
// or a digit string optionally prefixed with "KIC".
func directKey(id any) (string, bool) {
	switch v := id.(type) {
	case string:
		m := kicForm.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			return "", false
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	case fmt.Stringer:
		return directKey(v.String())
	}

	rv := reflect.ValueOf(id)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return "", false
		}
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

func (a *Accessor) observe(start time.Time, err *error) {
	a.metrics.ObserveLookup("stellar", start, *err)
}

package kepmap

import (
	"context"
	"strings"

	"github.com/agentstation/kepmap/internal/matcher"
	"github.com/agentstation/kepmap/pkg/distributions"
	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/logging"
	"github.com/agentstation/kepmap/pkg/table"
)

// LoadCatalog returns a catalog table, reading the local cache or downloading
// it on first use.
func (c *client) LoadCatalog(ctx context.Context, name string) (*table.Table, error) {
	return c.cache.Load(ctx, name)
}

// RefreshCatalog downloads a catalog again and replaces both the local file
// and the in-memory table. Refresh hooks receive the row changes against the
// table previously held in memory, if any.
func (c *client) RefreshCatalog(ctx context.Context, name string) (*table.Table, error) {
	old, _ := c.cache.Peek(name)

	t, err := c.cache.Refresh(ctx, name)
	if err != nil {
		return nil, err
	}

	changes := Diff(old, t)
	logging.FromContext(ctx).Info().
		Str("catalog", name).
		Int("added", len(changes.Added)).
		Int("updated", len(changes.Updated)).
		Int("removed", len(changes.Removed)).
		Msg("Catalog refreshed")

	c.hooks.triggerRefreshed(name, changes)
	return t, nil
}

// StellarProperty returns the named columns of the star behind id, which may
// be a KIC number or any KOI identifier. With no props every column is returned.
func (c *client) StellarProperty(ctx context.Context, id any, props ...string) (table.Record, error) {
	return c.stellar.Properties(ctx, id, props...)
}

// CandidateProperty returns one column of a candidate.
func (c *client) CandidateProperty(ctx context.Context, id any, prop string) (table.Value, error) {
	return c.candidates.Property(ctx, id, prop)
}

// CandidateRow returns the columns of a candidate. Columns may be glob or
// regex patterns ("koi_*mag"); a pattern matching no column fails the lookup
// like an unknown column does. With no columns the whole row is returned.
func (c *client) CandidateRow(ctx context.Context, id any, columns ...string) (table.Record, error) {
	if len(columns) == 0 {
		return c.candidates.Record(ctx, id)
	}

	t, err := c.candidates.Table(ctx)
	if err != nil {
		return table.Record{}, err
	}
	selected, err := matcher.Select(t.ColumnNames(), columns...)
	if err != nil {
		return table.Record{}, errors.NewValidationError("columns", columns, err.Error())
	}
	if len(selected) == 0 {
		row, err := c.candidates.Row(ctx, id)
		if err != nil {
			return table.Record{}, err
		}
		return table.Record{}, errors.NewPropertyNotFoundError(c.candidates.Catalog(), row.Key(), strings.Join(columns, ","))
	}
	return c.candidates.Record(ctx, id, selected...)
}

// CandidateRaDec returns the sky position of a candidate in degrees.
func (c *client) CandidateRaDec(ctx context.Context, id any) (ra, dec float64, err error) {
	return c.candidates.RaDec(ctx, id)
}

// CandidateMagnitudes returns the host star magnitudes, keyed by band and alias.
func (c *client) CandidateMagnitudes(ctx context.Context, id any, bands ...string) (table.Record, error) {
	return c.candidates.Magnitudes(ctx, id, bands...)
}

// CandidateMagnitude returns the host star magnitude in one band.
func (c *client) CandidateMagnitude(ctx context.Context, id any, band string) (float64, error) {
	return c.candidates.Magnitude(ctx, id, band)
}

// Distribution builds the two-sided Gaussian of a stellar property. Without
// unc the property's default fallback uncertainty applies.
func (c *client) Distribution(ctx context.Context, id any, prop string, unc ...distributions.Uncertainty) (distributions.DoubleGauss, error) {
	if len(unc) > 0 {
		return c.distributions.Build(ctx, id, prop, unc[0])
	}
	return c.distributions.BuildDefault(ctx, id, prop)
}

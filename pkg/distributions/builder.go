// Package distributions turns a cataloged value and its asymmetric error bars
// into a two-sided Gaussian.
//
// Catalog columns follow the archive convention: <prop> is the central value,
// <prop>_err1 the upper error (positive) and <prop>_err2 the lower error
// (negative). A missing error bar is replaced by a default uncertainty.
package distributions

import (
	"context"
	"math"

	"github.com/agentstation/kepmap/pkg/table"
)

// Uncertainty is the fallback width used for a missing error bar.
type Uncertainty struct {
	Value float64 `json:"value" yaml:"value"`
	// Absolute selects Value as the width itself rather than a fraction of the central value.
	Absolute bool `json:"absolute" yaml:"absolute"`
}

// Fractional returns an uncertainty of f times the central value.
func Fractional(f float64) Uncertainty {
	return Uncertainty{Value: f}
}

// Absolute returns an uncertainty of v.
func Absolute(v float64) Uncertainty {
	return Uncertainty{Value: v, Absolute: true}
}

// width returns the fallback width for central value mu.
func (u Uncertainty) width(mu float64) float64 {
	if u.Absolute {
		return math.Abs(u.Value)
	}
	return math.Abs(mu * u.Value)
}

// Default is the naming and uncertainty policy for one property.
type Default struct {
	Name        string
	Uncertainty Uncertainty
}

// Defaults holds the policy for the stellar properties with known conventions.
var Defaults = map[string]Default{
	"mass":   {Name: "M", Uncertainty: Fractional(0.1)},
	"radius": {Name: "R", Uncertainty: Fractional(0.1)},
	"feh":    {Name: "[Fe/H]", Uncertainty: Absolute(0.2)},
}

// DefaultUncertainty applies to properties without an entry in Defaults.
var DefaultUncertainty = Fractional(0.1)

// PropertyReader returns the named columns of a resolved row.
type PropertyReader interface {
	Properties(ctx context.Context, id any, props ...string) (table.Record, error)
}

// Builder builds distributions from catalog rows.
type Builder struct {
	reader PropertyReader
}

// NewBuilder returns a builder reading through r, normally a stellar accessor.
func NewBuilder(r PropertyReader) *Builder {
	return &Builder{reader: r}
}

// ErrorColumns returns the upper and lower error columns of prop.
func ErrorColumns(prop string) (upper, lower string) {
	return prop + "_err1", prop + "_err2"
}

// Build reads prop and its error bars for id and returns the distribution,
// substituting unc for a missing (NaN) bar. The distribution is named after
// the property, or the Defaults name when one exists.
func (b *Builder) Build(ctx context.Context, id any, prop string, unc Uncertainty) (DoubleGauss, error) {
	upper, lower := ErrorColumns(prop)
	rec, err := b.reader.Properties(ctx, id, prop, upper, lower)
	if err != nil {
		return DoubleGauss{}, err
	}

	mu := rec.Float(prop)
	sighi := rec.Float(upper)
	siglo := -rec.Float(lower)
	if math.IsNaN(sighi) {
		sighi = unc.width(mu)
	}
	if math.IsNaN(siglo) {
		siglo = unc.width(mu)
	}

	name := prop
	if d, ok := Defaults[prop]; ok {
		name = d.Name
	}
	return NewDoubleGauss(name, mu, siglo, sighi)
}

// BuildDefault is Build with the property's default uncertainty.
func (b *Builder) BuildDefault(ctx context.Context, id any, prop string) (DoubleGauss, error) {
	unc := DefaultUncertainty
	if d, ok := Defaults[prop]; ok {
		unc = d.Uncertainty
	}
	return b.Build(ctx, id, prop, unc)
}

// Mass returns the stellar mass distribution, 10% fractional fallback.
func (b *Builder) Mass(ctx context.Context, id any) (DoubleGauss, error) {
	return b.BuildDefault(ctx, id, "mass")
}

// Radius returns the stellar radius distribution, 10% fractional fallback.
func (b *Builder) Radius(ctx context.Context, id any) (DoubleGauss, error) {
	return b.BuildDefault(ctx, id, "radius")
}

// Metallicity returns the [Fe/H] distribution, 0.2 dex absolute fallback.
func (b *Builder) Metallicity(ctx context.Context, id any) (DoubleGauss, error) {
	return b.BuildDefault(ctx, id, "feh")
}

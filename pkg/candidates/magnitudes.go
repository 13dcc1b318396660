package candidates

import (
	"strings"

	"github.com/agentstation/kepmap/pkg/table"
)

// DefaultBands are the KIC photometric bands reported by Magnitudes.
var DefaultBands = []string{"g", "r", "i", "z", "j", "h", "k", "kep"}

// bandAliases lists the extra names each band is also reported under.
var bandAliases = map[string][]string{
	"j":   {"J"},
	"h":   {"H"},
	"k":   {"K", "Ks"},
	"kep": {"Kepler"},
}

// canonicalBand maps an alias back to its catalog band; unknown names pass through.
func canonicalBand(band string) string {
	for b, aliases := range bandAliases {
		for _, a := range aliases {
			if a == band {
				return b
			}
		}
	}
	return strings.TrimSpace(band)
}

// MagnitudeColumn returns the catalog column of a band, e.g. koi_gmag.
func MagnitudeColumn(band string) string {
	return "koi_" + canonicalBand(band) + "mag"
}

// OriginalColumn returns the column holding a band's value before correction.
func OriginalColumn(band string) string {
	return MagnitudeColumn(band) + "_orig"
}

// colorTerm recomputes one band as base + coef*(a-b) + offset, all read from
// the uncorrected columns.
type colorTerm struct {
	band   string
	a, b   string
	coef   float64
	offset float64
}

// colorTerms convert KIC griz to the SDSS system.
var colorTerms = []colorTerm{
	{band: "g", a: "g", b: "r", coef: 0.0921, offset: -0.0985},
	{band: "r", a: "r", b: "i", coef: 0.0548, offset: -0.0383},
	{band: "i", a: "r", b: "i", coef: 0.0696, offset: -0.0583},
	{band: "z", a: "i", b: "z", coef: 0.1587, offset: -0.0597},
}

// CorrectMagnitudes returns a table where koi_gmag, koi_rmag, koi_imag and
// koi_zmag hold corrected values and the cataloged values are kept under
// koi_<band>mag_orig. A band is skipped when any column it needs is absent.
func CorrectMagnitudes(t *table.Table) (*table.Table, error) {
	orig := make(map[string][]float64, 4)
	for _, band := range []string{"g", "r", "i", "z"} {
		if col, err := t.FloatColumn(MagnitudeColumn(band)); err == nil {
			orig[band] = col
		}
	}

	out := t
	for _, ct := range colorTerms {
		base, okBase := orig[ct.band]
		a, okA := orig[ct.a]
		b, okB := orig[ct.b]
		if !okBase || !okA || !okB {
			continue
		}

		corrected := make([]float64, len(base))
		for i := range base {
			corrected[i] = base[i] + ct.coef*(a[i]-b[i]) + ct.offset
		}

		var err error
		if out, err = out.WithFloatColumn(MagnitudeColumn(ct.band), corrected); err != nil {
			return nil, err
		}
		if out, err = out.WithFloatColumn(OriginalColumn(ct.band), base); err != nil {
			return nil, err
		}
	}
	return out, nil
}

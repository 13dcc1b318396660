package distributions

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/agentstation/kepmap/pkg/errors"
)

// DoubleGauss is a two-sided Gaussian: a normal of width SigLo below Mu and a
// normal of width SigHi above it, joined so the density is continuous at Mu.
// Mu is the median only when the halves are equal; in general the share of
// probability below Mu is SigLo/(SigLo+SigHi).
type DoubleGauss struct {
	Name  string  `json:"name" yaml:"name"`
	Mu    float64 `json:"mu" yaml:"mu"`
	SigLo float64 `json:"siglo" yaml:"siglo"`
	SigHi float64 `json:"sighi" yaml:"sighi"`
}

// NewDoubleGauss validates the parameters: Mu must be finite and both widths
// finite and positive.
func NewDoubleGauss(name string, mu, siglo, sighi float64) (DoubleGauss, error) {
	switch {
	case math.IsNaN(mu) || math.IsInf(mu, 0):
		return DoubleGauss{}, errors.NewValidationError("mu", mu, "central value is not cataloged")
	case !(siglo > 0) || math.IsInf(siglo, 0):
		return DoubleGauss{}, errors.NewValidationError("siglo", siglo, "lower width must be positive")
	case !(sighi > 0) || math.IsInf(sighi, 0):
		return DoubleGauss{}, errors.NewValidationError("sighi", sighi, "upper width must be positive")
	}
	return DoubleGauss{Name: name, Mu: mu, SigLo: siglo, SigHi: sighi}, nil
}

func (d DoubleGauss) lo() distuv.Normal { return distuv.Normal{Mu: d.Mu, Sigma: d.SigLo} }
func (d DoubleGauss) hi() distuv.Normal { return distuv.Normal{Mu: d.Mu, Sigma: d.SigHi} }

// weightLo is the probability mass below Mu.
func (d DoubleGauss) weightLo() float64 {
	return d.SigLo / (d.SigLo + d.SigHi)
}

// Prob returns the density at x.
func (d DoubleGauss) Prob(x float64) float64 {
	wlo := d.weightLo()
	if x < d.Mu {
		return 2 * wlo * d.lo().Prob(x)
	}
	return 2 * (1 - wlo) * d.hi().Prob(x)
}

// CDF returns P(X <= x).
func (d DoubleGauss) CDF(x float64) float64 {
	wlo := d.weightLo()
	if x < d.Mu {
		return 2 * wlo * d.lo().CDF(x)
	}
	return wlo + 2*(1-wlo)*(d.hi().CDF(x)-0.5)
}

// Quantile is the inverse of CDF. It panics when p is outside [0, 1].
func (d DoubleGauss) Quantile(p float64) float64 {
	if p < 0 || p > 1 {
		panic("distributions: quantile out of bounds")
	}
	wlo := d.weightLo()
	if p < wlo {
		return d.lo().Quantile(p / (2 * wlo))
	}
	return d.hi().Quantile(0.5 + (p-wlo)/(2*(1-wlo)))
}

// Mean returns the expected value.
func (d DoubleGauss) Mean() float64 {
	return d.Mu + math.Sqrt(2/math.Pi)*(d.SigHi-d.SigLo)
}

// Sample draws one value by inverse transform.
func (d DoubleGauss) Sample(rng *rand.Rand) float64 {
	p := rng.Float64()
	for p == 0 {
		p = rng.Float64()
	}
	return d.Quantile(p)
}

// Samples draws n values.
func (d DoubleGauss) Samples(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Sample(rng)
	}
	return out
}

// String implements fmt.Stringer.
func (d DoubleGauss) String() string {
	return fmt.Sprintf("%s = %.4g +%.2g/-%.2g", d.Name, d.Mu, d.SigHi, d.SigLo)
}

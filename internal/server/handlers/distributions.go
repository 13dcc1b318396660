package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/kepmap/internal/server/response"
	"github.com/agentstation/kepmap/pkg/distributions"
	"github.com/agentstation/kepmap/pkg/errors"
)

// DistributionResponse is a double Gaussian with a few derived summaries.
type DistributionResponse struct {
	distributions.DoubleGauss
	Mean   float64    `json:"mean"`
	Median float64    `json:"median"`
	Sigma1 [2]float64 `json:"interval_68"`
}

// HandleGetDistribution handles GET /api/v1/distributions/{id}/{prop}.
//
// Query parameters:
//   - unc: fallback uncertainty for a missing error bar (default per property)
//   - absolute: read unc as a width rather than a fraction of the value
func (h *Handlers) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	prop := chi.URLParam(r, "prop")

	var unc []distributions.Uncertainty
	if raw := r.URL.Query().Get("unc"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.ErrorFromType(w, errors.NewValidationError("unc", raw, "must be a number"))
			return
		}
		absolute, err := boolParam(r, "absolute")
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		u := distributions.Fractional(v)
		if absolute {
			u = distributions.Absolute(v)
		}
		unc = append(unc, u)
	}

	data, err := h.cached(r, func() (any, error) {
		d, err := h.client.Distribution(r.Context(), id, prop, unc...)
		if err != nil {
			return nil, err
		}
		return DistributionResponse{
			DoubleGauss: d,
			Mean:        d.Mean(),
			Median:      d.Quantile(0.5),
			Sigma1:      [2]float64{d.Quantile(0.15865525393145707), d.Quantile(0.8413447460685429)},
		}, nil
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, data)
}

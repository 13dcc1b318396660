package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/kepmap/internal/server/response"
	"github.com/agentstation/kepmap/pkg/logging"
	"github.com/agentstation/kepmap/pkg/table"
)

// RaDecResponse is the sky position of a candidate in degrees. A missing
// coordinate encodes as null.
type RaDecResponse struct {
	ID  string      `json:"id"`
	RA  table.Value `json:"ra"`
	Dec table.Value `json:"dec"`
}

// HandleGetCandidate handles GET /api/v1/candidates/{id}.
//
// The columns query parameter accepts column names, globs and regular
// expressions ("koi_period,koi_*mag"). Without it the whole row is returned.
func (h *Handlers) HandleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	columns := listParam(r, "columns")

	data, err := h.cached(r, func() (any, error) {
		return h.client.CandidateRow(r.Context(), id, columns...)
	})
	if err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Str("id", id).Msg("Candidate lookup failed")
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, data)
}

// HandleGetRaDec handles GET /api/v1/candidates/{id}/radec.
func (h *Handlers) HandleGetRaDec(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := h.cached(r, func() (any, error) {
		ra, dec, err := h.client.CandidateRaDec(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return RaDecResponse{ID: id, RA: table.FloatValue(ra), Dec: table.FloatValue(dec)}, nil
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, data)
}

// HandleGetMagnitudes handles GET /api/v1/candidates/{id}/magnitudes.
//
// The bands query parameter selects bands by name or alias (J, H, K, Ks,
// Kepler, g, r, i, z). Every band is returned without it.
func (h *Handlers) HandleGetMagnitudes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bands := listParam(r, "bands")

	data, err := h.cached(r, func() (any, error) {
		return h.client.CandidateMagnitudes(r.Context(), id, bands...)
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, data)
}

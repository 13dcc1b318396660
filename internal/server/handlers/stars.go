package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/kepmap/internal/server/response"
	"github.com/agentstation/kepmap/pkg/logging"
)

// HandleGetStar handles GET /api/v1/stars/{id}.
//
// The id may be a KIC number or any KOI identifier. The props query parameter
// limits the columns returned; every column is returned without it.
func (h *Handlers) HandleGetStar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	props := listParam(r, "props")

	data, err := h.cached(r, func() (any, error) {
		return h.client.StellarProperty(r.Context(), id, props...)
	})
	if err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Str("id", id).Msg("Stellar lookup failed")
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, data)
}

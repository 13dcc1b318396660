package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/kepmap/internal/server/response"
	"github.com/agentstation/kepmap/pkg/koi"
)

// IdentifierResponse is a normalized identifier.
type IdentifierResponse struct {
	Input      string `json:"input"`
	Identifier any    `json:"identifier"`
}

// HandleNormalize handles GET /api/v1/identifiers/{id}.
//
// Query parameters:
//   - star: reduce to the host star name (K00752)
//   - number: return the numeric form (752.01, or 752 with star)
func (h *Handlers) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	star, err := boolParam(r, "star")
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	number, err := boolParam(r, "number")
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	var opts []koi.Option
	if star {
		opts = append(opts, koi.StarOnly())
	}
	if number {
		opts = append(opts, koi.AsNumber())
	}

	id, err := h.client.NormalizeIdentifier(raw, opts...)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, IdentifierResponse{Input: raw, Identifier: id})
}

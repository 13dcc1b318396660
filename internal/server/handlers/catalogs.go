package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/kepmap/internal/server/response"
	"github.com/agentstation/kepmap/pkg/catalogs"
)

// RefreshResponse reports a completed catalog refresh.
type RefreshResponse struct {
	Catalog string `json:"catalog"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// HandleListCatalogs handles GET /api/v1/catalogs.
func (h *Handlers) HandleListCatalogs(w http.ResponseWriter, r *http.Request) {
	status := h.client.Catalogs().Status(r.Context())
	if status == nil {
		status = []catalogs.Status{}
	}
	response.OK(w, status)
}

// HandleRefreshCatalog handles POST /api/v1/catalogs/{name}/refresh.
func (h *Handlers) HandleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := h.client.RefreshCatalog(r.Context(), name)
	if err != nil {
		h.logger.Warn().Err(err).Str("catalog", name).Msg("Catalog refresh failed")
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, RefreshResponse{Catalog: name, Rows: t.Len(), Columns: len(t.Columns())})
}

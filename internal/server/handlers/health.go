package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/kepmap/internal/server/response"
)

// HealthResponse reports liveness and which catalogs are in memory.
type HealthResponse struct {
	Status   string   `json:"status"`
	Uptime   string   `json:"uptime"`
	Catalogs []string `json:"catalogs"`
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	loaded := h.client.Catalogs().LoadedNames()
	if loaded == nil {
		loaded = []string{}
	}
	response.OK(w, HealthResponse{
		Status:   "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Catalogs: loaded,
	})
}

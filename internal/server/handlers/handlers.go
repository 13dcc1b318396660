// Package handlers implements the HTTP handlers of the lookup API.
//
// Every handler answers with the response envelope {data, error}. Lookup
// errors are mapped to status codes by response.ErrorFromType.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/agentstation/kepmap"
	"github.com/agentstation/kepmap/internal/cache"
	"github.com/agentstation/kepmap/internal/matcher"
	"github.com/agentstation/kepmap/pkg/errors"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	client    kepmap.Client
	cache     *cache.Cache[any]
	logger    *zerolog.Logger
	startTime time.Time
}

// New creates a new Handlers instance. A nil cache disables response caching.
func New(client kepmap.Client, c *cache.Cache[any], logger *zerolog.Logger, startTime time.Time) *Handlers {
	return &Handlers{
		client:    client,
		cache:     c,
		logger:    logger,
		startTime: startTime,
	}
}

// Register mounts the lookup routes on r.
func (h *Handlers) Register(r chi.Router) {
	r.Get("/identifiers/{id}", h.HandleNormalize)
	r.Get("/stars/{id}", h.HandleGetStar)
	r.Get("/candidates/{id}", h.HandleGetCandidate)
	r.Get("/candidates/{id}/radec", h.HandleGetRaDec)
	r.Get("/candidates/{id}/magnitudes", h.HandleGetMagnitudes)
	r.Get("/distributions/{id}/{prop}", h.HandleGetDistribution)
	r.Get("/catalogs", h.HandleListCatalogs)
	r.Post("/catalogs/{name}/refresh", h.HandleRefreshCatalog)
}

// cached serves a lookup from the response cache, keyed by path and query.
// Only successful results are stored.
func (h *Handlers) cached(r *http.Request, load func() (any, error)) (any, error) {
	if h.cache == nil {
		return load()
	}
	key := r.URL.Path + "?" + r.URL.RawQuery
	if v, ok := h.cache.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	h.cache.Set(key, v)
	return v, nil
}

// listParam reads a comma separated query parameter. Commas inside regex
// groups such as {1,3} do not split.
func listParam(r *http.Request, name string) []string {
	return matcher.SplitList(r.URL.Query().Get(name))
}

// boolParam reads an optional boolean query parameter.
func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewValidationError(name, raw, "must be a boolean")
	}
	return v, nil
}

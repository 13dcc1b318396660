package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/kepmap/internal/server/handlers"
	"github.com/agentstation/kepmap/internal/server/middleware"
	"github.com/agentstation/kepmap/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Outermost first: request id and recovery wrap everything else.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Metrics(s.metrics))
	if s.config.CORSEnabled {
		cfg := middleware.DefaultCORSConfig()
		if len(s.config.CORSOrigins) > 0 {
			cfg.AllowedOrigins = s.config.CORSOrigins
			cfg.AllowAll = false
		}
		r.Use(middleware.CORS(cfg))
	}
	if s.limiter != nil {
		r.Use(middleware.RateLimit(s.limiter))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found", r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method)
	})

	h := handlers.New(s.client, s.cache, s.logger, s.startTime)

	// Favicon handler (return 204 No Content to avoid 404 logs)
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/health", h.HandleHealth)
	if s.config.MetricsEnabled && s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route(s.config.PathPrefix, func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		h.Register(r)
	})

	return r
}

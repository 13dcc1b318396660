// Package server provides the HTTP lookup API over a kepmap.Client.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/kepmap"
	"github.com/agentstation/kepmap/internal/cache"
	"github.com/agentstation/kepmap/internal/metrics"
	"github.com/agentstation/kepmap/internal/server/middleware"
	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/logging"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client    kepmap.Client
	cache     *cache.Cache[any]
	limiter   *middleware.RateLimiter
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics counts requests in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New creates a new server instance with the given configuration.
func New(client kepmap.Client, cfg Config, opts ...Option) (*Server, error) {
	if client == nil {
		return nil, errors.NewValidationError("client", nil, "client is required")
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = constants.APIPrefix
	}
	if cfg.Addr == "" {
		cfg.Addr = constants.DefaultServerAddr
	}

	s := &Server{
		client:    client,
		config:    cfg,
		logger:    logging.Default(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.CacheTTL > 0 {
		s.cache = cache.New[any](cfg.CacheTTL, cfg.CacheTTL*2)
		// Cached lookups are stale once a catalog changes.
		client.OnCatalogRefreshed(func(catalog string, changes kepmap.Changes) {
			s.cache.Clear()
			s.logger.Debug().
				Str("catalog", catalog).
				Int("added", len(changes.Added)).
				Int("updated", len(changes.Updated)).
				Int("removed", len(changes.Removed)).
				Msg("Response cache cleared after refresh")
		})
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, s.logger)
	}

	s.logger.Debug().
		Str("addr", cfg.Addr).
		Str("prefix", cfg.PathPrefix).
		Msg("Server instance created")
	return s, nil
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// ListenAndServe serves until ctx is done, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Lookup server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.stop()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.WrapResource("listen", "server", s.config.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down lookup server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.stop()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Server shutdown timed out")
		return errors.NewTimeoutError("shutdown", constants.ShutdownTimeout.String(), err.Error())
	}
	return nil
}

// stop releases background resources.
func (s *Server) stop() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Cache returns the response cache, nil when caching is disabled.
func (s *Server) Cache() *cache.Cache[any] {
	return s.cache
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}

// Package app provides the application context and dependency management
// for the kepmap CLI: configuration, logging and the lazily created catalog
// client shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/kepmap"
	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/metrics"
	"github.com/agentstation/kepmap/pkg/errors"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the kepmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client kepmap.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	app.registry = prometheus.NewRegistry()
	app.metrics = metrics.New(app.registry)

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Metrics returns the metrics recorded by the client.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Registry returns the registry Metrics are registered on.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Client returns the catalog client, creating it lazily if needed.
func (a *App) Client() (kepmap.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := kepmap.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = c
	return c, nil
}

// Shutdown stops background refreshes of the client, if one was created.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	c := a.client
	a.mu.RUnlock()

	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close client during shutdown")
		return err
	}
	return nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []kepmap.Option {
	opts := []kepmap.Option{
		kepmap.WithLogger(a.logger),
		kepmap.WithMetrics(a.metrics),
	}

	if a.config.DataDir != "" {
		opts = append(opts, kepmap.WithDataDir(a.config.DataDir))
	}
	if a.config.ArchiveURL != "" {
		opts = append(opts, kepmap.WithArchiveURL(a.config.ArchiveURL))
	}
	if a.config.HTTPTimeout > 0 {
		opts = append(opts, kepmap.WithHTTPTimeout(a.config.HTTPTimeout))
	}
	if a.config.StellarTable != "" {
		opts = append(opts, kepmap.WithStellarTable(a.config.StellarTable))
	}
	if a.config.CandidateTable != "" {
		opts = append(opts, kepmap.WithCandidateTable(a.config.CandidateTable))
	}
	if a.config.AutoRefresh > 0 {
		opts = append(opts, kepmap.WithAutoRefresh(a.config.AutoRefresh))
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(c kepmap.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

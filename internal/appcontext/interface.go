// Package appcontext provides the shared application context interface
// used by all commands, so command packages depend on an interface rather
// than on the concrete App.
package appcontext

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/kepmap"
	"github.com/agentstation/kepmap/internal/metrics"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/kepmap/app implements it.
type Interface interface {
	// Client returns the catalog client, creating it lazily if needed.
	Client() (kepmap.Client, error)

	// Metrics returns the metrics recorded by the client.
	Metrics() *metrics.Metrics

	// Registry returns the registry Metrics are registered on.
	Registry() *prometheus.Registry

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

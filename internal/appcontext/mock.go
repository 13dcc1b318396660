package appcontext

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/kepmap"
	"github.com/agentstation/kepmap/internal/metrics"
)

// Mock provides a mock implementation of Interface for testing.
// If a function field is nil, the method returns a default value.
type Mock struct {
	ClientFunc  func() (kepmap.Client, error)
	MetricsFunc func() *metrics.Metrics
	Reg         *prometheus.Registry
	LoggerFunc  func() *zerolog.Logger
	Format      string
}

var _ Interface = (*Mock)(nil)

// Client returns a client using the mock function or kepmap defaults.
func (m *Mock) Client() (kepmap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return kepmap.New()
}

// Metrics returns metrics using the mock function or nil.
func (m *Mock) Metrics() *metrics.Metrics {
	if m.MetricsFunc != nil {
		return m.MetricsFunc()
	}
	return nil
}

// Registry returns Reg, or a fresh registry.
func (m *Mock) Registry() *prometheus.Registry {
	if m.Reg == nil {
		m.Reg = prometheus.NewRegistry()
	}
	return m.Reg
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Version returns "test".
func (m *Mock) Version() string { return "test" }

// Commit returns "test-commit".
func (m *Mock) Commit() string { return "test-commit" }

// Date returns "test-date".
func (m *Mock) Date() string { return "test-date" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

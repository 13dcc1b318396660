package server

import (
	"time"

	"github.com/agentstation/kepmap/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Addr string

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Performance settings
	RateLimit int           // Requests per minute per IP (0 to disable)
	CacheTTL  time.Duration // Lifetime of cached lookup responses (0 to disable)

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:        constants.DefaultServerAddr,
		PathPrefix:  constants.APIPrefix,
		CORSEnabled: false,
		CORSOrigins: []string{},
		RateLimit:   100,
		CacheTTL:    5 * time.Minute,
		ReadTimeout: 10 * time.Second,
		// Catalog downloads happen inside a request on a cold cache.
		WriteTimeout:   constants.DefaultHTTPTimeout + 30*time.Second,
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
	}
}

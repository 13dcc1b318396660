package kepmap

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/kepmap/internal/metrics"
	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/logging"
)

// options holds the client configuration.
type options struct {
	dataDir        string
	archiveURL     string
	httpClient     *http.Client
	httpTimeout    time.Duration
	logger         *zerolog.Logger
	metrics        *metrics.Metrics
	stellarTable   string
	candidateTable string

	autoRefreshEnabled  bool
	autoRefreshInterval time.Duration
}

// Option configures a Client.
type Option func(*options)

func defaults() *options {
	return &options{
		dataDir:             DefaultDataDir(),
		archiveURL:          constants.ArchiveURL,
		httpTimeout:         constants.DefaultHTTPTimeout,
		logger:              logging.Default(),
		stellarTable:        constants.StellarTable,
		candidateTable:      constants.CandidateTable,
		autoRefreshInterval: constants.DefaultRefreshInterval,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DefaultDataDir returns the cache directory: $KEPMAP_DATA_DIR when set,
// otherwise ~/.kepmap. Without a resolvable home directory it falls back to
// .kepmap in the working directory.
func DefaultDataDir() string {
	if dir := os.Getenv(constants.DataDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return constants.DefaultDataDirName
	}
	return filepath.Join(home, constants.DefaultDataDirName)
}

// WithDataDir sets the directory holding cached catalogs.
func WithDataDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.dataDir = dir
		}
	}
}

// WithArchiveURL points downloads at a different table query service.
func WithArchiveURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.archiveURL = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithHTTPTimeout bounds a single catalog download.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpTimeout = d
		}
	}
}

// WithLogger sets the logger for catalog events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records catalog loads and lookups on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithStellarTable overrides the archive table used for stellar properties.
func WithStellarTable(name string) Option {
	return func(o *options) {
		if name != "" {
			o.stellarTable = name
		}
	}
}

// WithCandidateTable overrides the archive table used for candidates.
func WithCandidateTable(name string) Option {
	return func(o *options) {
		if name != "" {
			o.candidateTable = name
		}
	}
}

// WithAutoRefresh periodically re-downloads every catalog loaded in memory.
// A non-positive interval keeps the default.
func WithAutoRefresh(interval time.Duration) Option {
	return func(o *options) {
		o.autoRefreshEnabled = true
		if interval > 0 {
			o.autoRefreshInterval = interval
		}
	}
}

// Package constants provides shared constants used throughout the kepmap codebase.
// This includes timeouts, file permissions, archive endpoints and the default
// catalog names that should be consistent across the library, CLI and server.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout bounds a single archive download
	DefaultHTTPTimeout = 2 * time.Minute

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// LockTimeout bounds how long a writer waits for another process to finish refreshing a cache file
	LockTimeout = 5 * time.Minute

	// LockRetryDelay is the polling interval while waiting on a cache file lock
	LockRetryDelay = 250 * time.Millisecond

	// ReadHeaderTimeout is the header read timeout of the lookup server
	ReadHeaderTimeout = 5 * time.Second

	// ShutdownTimeout is the grace period for the lookup server to drain
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Archive constants
const (
	// ArchiveURL is the NASA Exoplanet Archive table query service
	ArchiveURL = "https://exoplanetarchive.ipac.caltech.edu/cgi-bin/nstedAPI/nph-nstedAPI"

	// StellarTable is the Kepler Q1-Q17 DR24 stellar properties table
	StellarTable = "q1_q17_dr24_stellar"

	// CandidateTable is the cumulative Kepler Objects of Interest table
	CandidateTable = "cumulative"

	// UserAgent identifies archive requests
	UserAgent = "kepmap"
)

// Path constants
const (
	// DefaultDataDirName is the dotfile directory under the user's home holding cache files
	DefaultDataDirName = ".kepmap"

	// CacheFileExt is the extension of a persisted catalog
	CacheFileExt = ".db"

	// LockFileExt is the extension of a catalog's lock file
	LockFileExt = ".lock"

	// DataDirEnv overrides the data directory
	DataDirEnv = "KEPMAP_DATA_DIR"
)

// Server constants
const (
	// DefaultServerAddr is the default listen address of the lookup server
	DefaultServerAddr = ":8080"

	// APIPrefix is the path prefix of the lookup API
	APIPrefix = "/api/v1"
)

// Refresh constants
const (
	// DefaultRefreshInterval is how often loaded catalogs are re-downloaded when auto refresh is on
	DefaultRefreshInterval = 24 * time.Hour

	// RefreshContextTimeout bounds one automatic refresh of a catalog
	RefreshContextTimeout = 5 * time.Minute
)

package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Catalog client configuration
	DataDir        string
	ArchiveURL     string
	HTTPTimeout    time.Duration
	StellarTable   string
	CandidateTable string
	AutoRefresh    time.Duration

	// Logging configuration
	LogLevel    string // --log-level flag
	EnvLogLevel string // LOG_LEVEL or log_level from the config file
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. KEPMAP_* environment variables
//  3. .env and .env.local files
//  4. Config file (configFile, or ~/.kepmap.yaml / ./.kepmap.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first so they are visible to the env binding
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("kepmap")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("archive_url", constants.ArchiveURL)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("stellar_table", constants.StellarTable)
	v.SetDefault("candidate_table", constants.CandidateTable)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".kepmap")
		// A missing default config file is fine
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		DataDir:        v.GetString("data_dir"),
		ArchiveURL:     v.GetString("archive_url"),
		HTTPTimeout:    v.GetDuration("http_timeout"),
		StellarTable:   v.GetString("stellar_table"),
		CandidateTable: v.GetString("candidate_table"),
		AutoRefresh:    v.GetDuration("auto_refresh"),

		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", v.GetString("log_level")),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if config.HTTPTimeout <= 0 {
		return nil, errors.NewConfigError("config", "invalid http_timeout",
			errors.NewValidationError("http_timeout", config.HTTPTimeout, "must be positive"))
	}
	if config.AutoRefresh < 0 {
		return nil, errors.NewConfigError("config", "invalid auto_refresh",
			errors.NewValidationError("auto_refresh", config.AutoRefresh, "must not be negative"))
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over the config file and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, dataDir string) {
	c.Verbose = verbose || c.Verbose
	c.Quiet = quiet || c.Quiet
	c.NoColor = noColor || c.NoColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if dataDir != "" {
		c.DataDir = dataDir
	}
}

// loadEnvFiles loads environment variables from .env files. Variables already
// set in the environment win; .env.local is read first so it overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package serve implements the serve command.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/server"
)

// NewCommand creates the serve command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	defaults := server.DefaultConfig()
	cfg := defaults
	var noMetrics bool

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the lookup API over HTTP",
		Long: `Serve starts a JSON API over the catalogs.

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/v1/identifiers/{id}?star=&number=
  GET  /api/v1/stars/{id}?props=
  GET  /api/v1/candidates/{id}?columns=
  GET  /api/v1/candidates/{id}/radec
  GET  /api/v1/candidates/{id}/magnitudes?bands=
  GET  /api/v1/distributions/{id}/{prop}?unc=&absolute=
  GET  /api/v1/catalogs
  POST /api/v1/catalogs/{name}/refresh

Catalogs are loaded on the first request that needs them.`,
		Example: `  kepmap serve
  kepmap serve --addr :9000 --cors --rate-limit 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("cors-origins") {
				cfg.CORSEnabled = true
			}
			cfg.MetricsEnabled = !noMetrics

			srv, err := server.New(client, cfg,
				server.WithLogger(app.Logger()),
				server.WithMetrics(app.Metrics(), app.Registry()),
			)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", defaults.Addr, "Listen address")
	cmd.Flags().StringVar(&cfg.PathPrefix, "prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().BoolVar(&cfg.CORSEnabled, "cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSliceVar(&cfg.CORSOrigins, "cors-origins", nil, "Allowed CORS origins (comma-separated)")
	cmd.Flags().IntVar(&cfg.RateLimit, "rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().DurationVar(&cfg.CacheTTL, "cache-ttl", defaults.CacheTTL, "Response cache TTL (0 to disable)")
	cmd.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().DurationVar(&cfg.WriteTimeout, "write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().DurationVar(&cfg.IdleTimeout, "idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable the /metrics endpoint")

	return cmd
}

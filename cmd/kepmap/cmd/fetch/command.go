// Package fetch implements the fetch command.
package fetch

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/cmd/cmdutil"
)

// Result summarizes one refreshed catalog.
type Result struct {
	Catalog string `json:"catalog" yaml:"catalog"`
	Rows    int    `json:"rows" yaml:"rows"`
	Added   int    `json:"added" yaml:"added"`
	Updated int    `json:"updated" yaml:"updated"`
	Removed int    `json:"removed" yaml:"removed"`
}

// NewCommand creates the fetch command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fetch [catalog...]",
		GroupID: "management",
		Short:   "Download catalogs from the Exoplanet Archive",
		Long: `Fetch downloads catalogs again and replaces the local cache files.
Without arguments every registered catalog is fetched. Row changes are
reported against the previously cached copy.`,
		Example: `  kepmap fetch                 # refresh every catalog
  kepmap fetch cumulative      # refresh the KOI table only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cache := client.Catalogs()

			var mu sync.Mutex
			changes := make(map[string]kepmap.Changes)
			client.OnCatalogRefreshed(func(catalog string, ch kepmap.Changes) {
				mu.Lock()
				defer mu.Unlock()
				changes[catalog] = ch
			})

			names := args
			if len(names) == 0 {
				for _, def := range cache.Definitions() {
					names = append(names, def.Name)
				}
			}

			results := make([]Result, 0, len(names))
			for _, name := range names {
				// Load the cached copy so the refresh can be diffed against it.
				if cache.Cached(name) {
					if _, err := client.LoadCatalog(ctx, name); err != nil {
						app.Logger().Warn().Err(err).Str("catalog", name).Msg("Ignoring unreadable cached catalog")
					}
				}

				t, err := client.RefreshCatalog(ctx, name)
				if err != nil {
					return err
				}
				mu.Lock()
				ch := changes[name]
				mu.Unlock()
				results = append(results, Result{
					Catalog: name,
					Rows:    t.Len(),
					Added:   len(ch.Added),
					Updated: len(ch.Updated),
					Removed: len(ch.Removed),
				})
			}
			return cmdutil.Print(cmd, app, results, nil)
		},
	}
	return cmd
}

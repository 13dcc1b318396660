// Package catalogs implements the catalogs command.
package catalogs

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/cmd/cmdutil"
	"github.com/agentstation/kepmap/internal/cmd/output"
	"github.com/agentstation/kepmap/internal/cmd/table"
)

// NewCommand creates the catalogs command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "catalogs",
		GroupID: "management",
		Short:   "List catalogs and their local cache state",
		Example: `  kepmap catalogs           # name, key column, cache state
  kepmap catalogs -o wide   # include cache file details`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			status := client.Catalogs().Status(cmd.Context())
			return cmdutil.Print(cmd, app, status, func(wide bool) output.Data {
				return table.CatalogsToTableData(status, wide)
			})
		},
	}
}

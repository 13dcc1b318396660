// Package star implements the star command.
package star

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/cmd/cmdutil"
	"github.com/agentstation/kepmap/internal/cmd/output"
	"github.com/agentstation/kepmap/internal/cmd/table"
)

// NewCommand creates the star command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "star <id> [property...]",
		GroupID: "core",
		Short:   "Show stellar properties",
		Long: `Star prints properties of a star from the DR24 stellar table. The id
may be a KIC number or any KOI identifier; a KOI resolves to its host star.
Without properties the whole row is printed.`,
		Example: `  kepmap star 10797460
  kepmap star KOI-752.01 mass radius feh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			rec, err := client.StellarProperty(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, rec, func(bool) output.Data {
				return table.RecordToTableData(rec)
			})
		},
	}
}

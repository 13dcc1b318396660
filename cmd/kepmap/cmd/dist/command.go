// Package dist implements the dist command.
package dist

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/cmd/cmdutil"
	"github.com/agentstation/kepmap/internal/cmd/output"
	"github.com/agentstation/kepmap/internal/cmd/table"
	"github.com/agentstation/kepmap/pkg/distributions"
)

// NewCommand creates the dist command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		unc      float64
		absolute bool
	)

	cmd := &cobra.Command{
		Use:     "dist <id> <property>",
		GroupID: "core",
		Short:   "Build the distribution of a stellar property",
		Long: `Dist builds a two-sided Gaussian from a stellar property and its error
bars. A missing error bar falls back to --unc, or to the property default:
10% for mass and radius, 0.2 dex for feh.`,
		Example: `  kepmap dist 752 mass
  kepmap dist 10797460 feh --unc 0.1 --absolute`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			var opts []distributions.Uncertainty
			if cmd.Flags().Changed("unc") {
				u := distributions.Fractional(unc)
				if absolute {
					u = distributions.Absolute(unc)
				}
				opts = append(opts, u)
			}

			d, err := client.Distribution(cmd.Context(), args[0], args[1], opts...)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, d, func(bool) output.Data {
				return table.DistributionToTableData(d)
			})
		},
	}

	cmd.Flags().Float64Var(&unc, "unc", 0, "Uncertainty for a missing error bar (fraction of the value)")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "Read --unc as an absolute width")

	return cmd
}

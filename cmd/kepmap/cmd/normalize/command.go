// Package normalize implements the normalize command.
package normalize

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/cmd/cmdutil"
	"github.com/agentstation/kepmap/pkg/koi"
)

// Result is one normalized identifier.
type Result struct {
	Input      string `json:"input" yaml:"input"`
	Identifier any    `json:"identifier" yaml:"identifier"`
}

// NewCommand creates the normalize command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var star, number bool

	cmd := &cobra.Command{
		Use:     "normalize <id>...",
		GroupID: "core",
		Short:   "Normalize KOI identifiers",
		Long: `Normalize converts loosely formatted KOI identifiers to the canonical
KNNNNN.NN form. Bare integers name the first candidate of a star.`,
		Example: `  kepmap normalize 752 KOI-752.02 koi_42      # K00752.01 K00752.02 K00042.01
  kepmap normalize --star K00752.02           # K00752
  kepmap normalize --star --number K00752.02  # 752`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			var opts []koi.Option
			if star {
				opts = append(opts, koi.StarOnly())
			}
			if number {
				opts = append(opts, koi.AsNumber())
			}

			results := make([]Result, 0, len(args))
			for _, arg := range args {
				id, err := client.NormalizeIdentifier(arg, opts...)
				if err != nil {
					return err
				}
				results = append(results, Result{Input: arg, Identifier: id})
			}
			return cmdutil.Print(cmd, app, results, nil)
		},
	}

	cmd.Flags().BoolVar(&star, "star", false, "Reduce to the host star (K00752)")
	cmd.Flags().BoolVar(&number, "number", false, "Print the numeric form (752.01)")

	return cmd
}

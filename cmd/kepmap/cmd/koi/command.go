// Package koi implements the koi command and its subcommands.
package koi

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/internal/appcontext"
	"github.com/agentstation/kepmap/internal/cmd/cmdutil"
	"github.com/agentstation/kepmap/internal/cmd/output"
	"github.com/agentstation/kepmap/internal/cmd/table"
	kt "github.com/agentstation/kepmap/pkg/table"
)

// NewCommand creates the koi command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "koi",
		GroupID: "core",
		Short:   "Look up Kepler Objects of Interest",
		Long: `Koi reads the cumulative KOI table. Identifiers may be given in any
form the normalize command accepts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newShowCommand(app))
	cmd.AddCommand(newRaDecCommand(app))
	cmd.AddCommand(newMagsCommand(app))
	cmd.AddCommand(newPropCommand(app))

	return cmd
}

func newShowCommand(app appcontext.Interface) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a candidate row",
		Example: `  kepmap koi show 752.01
  kepmap koi show 752.01 --columns 'koi_period,koi_*mag'
  kepmap koi show 752.01 --columns '^koi_[jhk]mag$'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			rec, err := client.CandidateRow(cmd.Context(), args[0], cmdutil.SplitPatterns(columns)...)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, rec, func(bool) output.Data {
				return table.RecordToTableData(rec)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&columns, "columns", "c", nil, "Columns, globs or regular expressions (comma-separated)")
	return cmd
}

// Position is the sky position of a candidate. A missing coordinate is null.
type Position struct {
	ID  string   `json:"id" yaml:"id"`
	RA  kt.Value `json:"ra" yaml:"ra"`
	Dec kt.Value `json:"dec" yaml:"dec"`
}

func newRaDecCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "radec <id>",
		Short: "Show the sky position in degrees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			ra, dec, err := client.CandidateRaDec(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, Position{ID: args[0], RA: kt.FloatValue(ra), Dec: kt.FloatValue(dec)}, nil)
		},
	}
}

func newMagsCommand(app appcontext.Interface) *cobra.Command {
	var bands []string

	cmd := &cobra.Command{
		Use:   "mags <id>",
		Short: "Show host star magnitudes",
		Long: `Mags prints the apparent magnitudes of a candidate's host star. Bands
are g, r, i, z, j, h, k and kep; J, H, K, Ks and Kepler are accepted as
aliases. Griz magnitudes are corrected to the SDSS system.`,
		Example: `  kepmap koi mags 752
  kepmap koi mags 752 --bands J,H,Ks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			rec, err := client.CandidateMagnitudes(cmd.Context(), args[0], cmdutil.SplitPatterns(bands)...)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, rec, func(bool) output.Data {
				return table.RecordToTableData(rec)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&bands, "bands", "b", nil, "Bands to print (comma-separated)")
	return cmd
}

// Property is a single candidate value.
type Property struct {
	ID       string `json:"id" yaml:"id"`
	Property string `json:"property" yaml:"property"`
	Value    any    `json:"value" yaml:"value"`
}

func newPropCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "prop <id> <property>",
		Short:   "Show one candidate property",
		Example: `  kepmap koi prop K00752.01 koi_period`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			v, err := client.CandidateProperty(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, Property{ID: args[0], Property: args[1], Value: v}, nil)
		},
	}
}

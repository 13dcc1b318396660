package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kepmap/cmd/kepmap/cmd/catalogs"
	"github.com/agentstation/kepmap/cmd/kepmap/cmd/dist"
	"github.com/agentstation/kepmap/cmd/kepmap/cmd/fetch"
	"github.com/agentstation/kepmap/cmd/kepmap/cmd/koi"
	"github.com/agentstation/kepmap/cmd/kepmap/cmd/normalize"
	"github.com/agentstation/kepmap/cmd/kepmap/cmd/serve"
	"github.com/agentstation/kepmap/cmd/kepmap/cmd/star"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(normalize.NewCommand(a))
	rootCmd.AddCommand(star.NewCommand(a))
	rootCmd.AddCommand(koi.NewCommand(a))
	rootCmd.AddCommand(dist.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(fetch.NewCommand(a))
	rootCmd.AddCommand(catalogs.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("kepmap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

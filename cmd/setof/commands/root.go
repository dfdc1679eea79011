// Package commands implements the setof command line.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:           "setof",
		Short:         "Generate GraphQL connections for PostgreSQL set-returning functions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "setof.yml", "configuration file")

	rootCmd.AddCommand(
		NewGenerateCommand(&configPath),
		NewSDLCommand(&configPath),
		NewVersionCommand(),
	)
	return rootCmd
}

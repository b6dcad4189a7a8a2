// Package commands holds the budget CLI: the API server, schema migrations and a
// terminal view that polls a running server.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags during build.
	Version = "dev"
	// Commit is set via ldflags during build.
	Commit = "none"
	// Date is set via ldflags during build.
	Date = "unknown"
)

type rootOptions struct {
	configPath string
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "budget",
		Short:   "Personal budget tracker",
		Long:    "Track income and expenses per month, keep a running balance, export and mail reports.",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "external config file (optional)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newWatchCommand(opts))
	rootCmd.AddCommand(newMailTestCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

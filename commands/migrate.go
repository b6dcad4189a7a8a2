package commands

import (
	"fmt"

	"budget/config"
	"budget/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(newMigrateDirectionCommand(opts, "up", "Apply all pending migrations", database.Up))
	cmd.AddCommand(newMigrateDirectionCommand(opts, "down", "Roll back every migration", database.Down))
	return cmd
}

func newMigrateDirectionCommand(opts *rootOptions, use, short string, dir database.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts.configPath, dir)
		},
	}
}

func runMigrate(configPath string, dir database.Direction) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return database.Migrate(cfg.Database, dir)
}

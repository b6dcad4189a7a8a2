package commands

import (
	"fmt"

	"budget/config"
	"budget/service"

	"github.com/spf13/cobra"
)

func newMailTestCommand(opts *rootOptions) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "mail-test",
		Short: "Send a test message with the configured SMTP settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := service.NewEmailService(&cfg.Email).SendTestEmail(to); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "test mail sent to %s\n", to)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

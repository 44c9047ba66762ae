package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/app"
	"github.com/spec-kit/ticket-tracker/internal/bootstrap"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the accounts listed in BOOTSTRAP_USERS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, cfg, logger, err := opts.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer container.Close()

			created, err := bootstrap.SeedUsers(cmd.Context(), container.AuthService, cfg.Bootstrap.Users, logger)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.outputJSON(cmd.OutOrStdout(), map[string]int{"created": created})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d seed users\n", created, len(cfg.Bootstrap.Users))
			return nil
		},
	}
}

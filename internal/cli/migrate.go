package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/app"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, cfg, logger, err := opts.open(cmd.Context(), app.Options{SkipMigrations: true})
			if err != nil {
				return err
			}
			defer container.Close()

			if !container.Postgres.Enabled() {
				return errors.New("POSTGRES_DSN is not set")
			}
			if err := persistence.RunMigrations(cmd.Context(), container.Postgres.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

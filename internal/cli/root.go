// Package cli implements ticketctl, the operator command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/app"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/observability"
)

// Opener loads configuration and wires the components a command needs.
type Opener func(ctx context.Context, opts app.Options) (*app.Container, *config.Config, *zap.Logger, error)

type rootOptions struct {
	jsonOutput bool
	open       Opener
}

// Execute runs ticketctl against the environment configuration.
func Execute() {
	if err := NewRootCmd(OpenFromEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// OpenFromEnv is the default Opener.
func OpenFromEnv(ctx context.Context, opts app.Options) (*app.Container, *config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, observability.ServiceFields(cfg.App))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	container, err := app.Build(ctx, cfg, logger, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	return container, cfg, logger, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd(open Opener) *cobra.Command {
	opts := &rootOptions{open: open}
	root := &cobra.Command{
		Use:   "ticketctl",
		Short: "Operate the ticket tracker",
		Long: `ticketctl applies database migrations, seeds default accounts and
manages users of the ticket tracker outside the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")

	root.AddCommand(newMigrateCmd(opts), newSeedCmd(opts), newUserCmd(opts))
	return root
}

func (o *rootOptions) outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/mcit/lawregistry/cmd/registry/cli"
	"github.com/mcit/lawregistry/internal/app"
	"github.com/mcit/lawregistry/internal/calendar"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		var exit cli.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		slog.Default().Error("registry", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "registry",
		Short:         "Legal document registry with multi-calendar date normalization",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		cli.NewConvertCommand(calendar.NewService()),
		cli.NewJobsCommand(func() (*cli.JobsCLI, error) {
			cfg, err := app.LoadConfig()
			if err != nil {
				return nil, err
			}
			return cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}), nil
		}),
		cli.NewMigrateCommand(func() (string, error) {
			cfg, err := app.LoadConfig()
			if err != nil {
				return "", err
			}
			return cfg.PGDSN, nil
		}),
	)
	return root
}

package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/reviewbot/internal/cli/registry"
	"github.com/thomas-vilte/reviewbot/internal/logger"
)

type ServeCommandFactory struct{}

func NewServeCommandFactory() *ServeCommandFactory {
	return &ServeCommandFactory{}
}

func (f *ServeCommandFactory) CreateCommand(load registry.Loader) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the webhook, cron and backfill endpoints",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address, overrides server.addr",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			container, err := load(ctx, cmd)
			if err != nil {
				return err
			}
			cfg := container.Config()
			if addr := cmd.String("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}

			srv, err := container.GetServer(ctx)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info(ctx, "starting reviewbot server",
				"addr", cfg.Server.Addr,
				"repo", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo,
				"provider", cfg.AI.Provider)
			return srv.ListenAndServe(ctx)
		},
	}
}

// Package cli assembles the reviewbot command line.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/reviewbot/internal/cli/command/review"
	"github.com/thomas-vilte/reviewbot/internal/cli/command/serve"
	"github.com/thomas-vilte/reviewbot/internal/cli/registry"
	"github.com/thomas-vilte/reviewbot/internal/config"
	"github.com/thomas-vilte/reviewbot/internal/di"
	"github.com/thomas-vilte/reviewbot/internal/i18n"
	"github.com/thomas-vilte/reviewbot/internal/logger"
)

// NewApp builds the root command. Configuration is read lazily, after the
// global flags are parsed, and at most once per process.
func NewApp(version string) (*cli.Command, error) {
	var (
		once      sync.Once
		container *di.Container
		loadErr   error
	)
	load := func(ctx context.Context, cmd *cli.Command) (*di.Container, error) {
		once.Do(func() {
			container, loadErr = newContainer(cmd)
		})
		return container, loadErr
	}

	reg := registry.NewRegistry(load)
	for _, r := range []struct {
		name    string
		factory registry.CommandFactory
	}{
		{"serve", serve.NewServeCommandFactory()},
		{"sweep", review.NewSweepCommandFactory()},
		{"backfill", review.NewBackfillCommandFactory()},
		{"review", review.NewReviewCommandFactory()},
	} {
		if err := reg.Register(r.name, r.factory); err != nil {
			return nil, err
		}
	}

	return &cli.Command{
		Name:        "reviewbot",
		Usage:       "Post AI summaries on open pull requests",
		Version:     version,
		Description: "Reviews pull requests of a GitHub repository on demand, on a schedule or from webhook deliveries.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the TOML configuration file",
				Sources: cli.EnvVars("REVIEWBOT_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print every pull request outcome",
			},
		},
		Commands:              reg.CreateCommands(),
		EnableShellCompletion: true,
	}, nil
}

func newContainer(cmd *cli.Command) (*di.Container, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.Bool("debug") {
		cfg.Log.Level = "debug"
	}

	logger.Initialize(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	trans, err := i18n.NewTranslations(config.GetLocaleConfig(cfg.Review.Language), "")
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	return di.NewContainer(cfg, trans), nil
}

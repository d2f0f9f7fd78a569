package main

import (
	"context"
	"os"

	"github.com/thomas-vilte/reviewbot/internal/cli"
	"github.com/thomas-vilte/reviewbot/internal/ui"
	"github.com/thomas-vilte/reviewbot/internal/version"
)

func main() {
	app, err := cli.NewApp(version.Version)
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}
}

package review

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/reviewbot/internal/cli/registry"
	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/regex"
	"github.com/thomas-vilte/reviewbot/internal/ui"
)

// Runner is the part of the orchestrator the commands drive.
type Runner interface {
	Sweep(ctx context.Context, repo models.RepoRef) (*models.Report, error)
	Backfill(ctx context.Context, repo models.RepoRef) (*models.Report, error)
	ReviewOne(ctx context.Context, repo models.RepoRef, c models.Candidate) (*models.Report, error)
}

// RunnerProvider resolves the runner and the configuration of the current invocation.
type RunnerProvider func(ctx context.Context, cmd *cli.Command) (Runner, *config.Config, error)

func fromLoader(load registry.Loader) RunnerProvider {
	return func(ctx context.Context, cmd *cli.Command) (Runner, *config.Config, error) {
		container, err := load(ctx, cmd)
		if err != nil {
			return nil, nil, err
		}
		if err := container.Config().RequireCredentials(); err != nil {
			return nil, nil, err
		}
		orch, err := container.GetOrchestrator(ctx)
		if err != nil {
			return nil, nil, err
		}
		return orch, container.Config(), nil
	}
}

type (
	SweepCommandFactory    struct{ provide RunnerProvider }
	BackfillCommandFactory struct{ provide RunnerProvider }
	ReviewCommandFactory   struct{ provide RunnerProvider }
)

func NewSweepCommandFactory() *SweepCommandFactory       { return &SweepCommandFactory{} }
func NewBackfillCommandFactory() *BackfillCommandFactory { return &BackfillCommandFactory{} }
func NewReviewCommandFactory() *ReviewCommandFactory     { return &ReviewCommandFactory{} }

func (f *SweepCommandFactory) CreateCommand(load registry.Loader) *cli.Command {
	return newSweepCommand(pick(f.provide, load))
}

func (f *BackfillCommandFactory) CreateCommand(load registry.Loader) *cli.Command {
	return newBackfillCommand(pick(f.provide, load))
}

func (f *ReviewCommandFactory) CreateCommand(load registry.Loader) *cli.Command {
	return newReviewCommand(pick(f.provide, load))
}

func pick(provide RunnerProvider, load registry.Loader) RunnerProvider {
	if provide != nil {
		return provide
	}
	return fromLoader(load)
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "repository as owner/name or a GitHub URL, overrides github.owner and github.repo",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the report as JSON",
		},
	}
}

func newSweepCommand(provide RunnerProvider) *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Review open pull requests one at a time until the sweep cap is reached",
		Flags: runFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, provide, func(ctx context.Context, r Runner, repo models.RepoRef) (*models.Report, error) {
				return r.Sweep(ctx, repo)
			})
		},
	}
}

func newBackfillCommand(provide RunnerProvider) *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "Review every open pull request without a review, in budgeted batches",
		Flags: runFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, provide, func(ctx context.Context, r Runner, repo models.RepoRef) (*models.Report, error) {
				return r.Backfill(ctx, repo)
			})
		},
	}
}

func newReviewCommand(provide RunnerProvider) *cli.Command {
	flags := append(runFlags(), &cli.IntFlag{
		Name:     "pr",
		Aliases:  []string{"n"},
		Usage:    "pull request number",
		Required: true,
	})
	return &cli.Command{
		Name:  "review",
		Usage: "Review a single pull request",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			number := int(cmd.Int("pr"))
			if number <= 0 {
				return domainErrors.ErrInvalidConfig.
					WithContext("field", "pr").
					WithSuggestion("--pr must be a positive pull request number")
			}
			return run(ctx, cmd, provide, func(ctx context.Context, r Runner, repo models.RepoRef) (*models.Report, error) {
				// The pipeline fetches the rest of the pull request.
				return r.ReviewOne(ctx, repo, models.Candidate{Number: number, ChangedFiles: models.UnknownFileCount})
			})
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, provide RunnerProvider, do func(context.Context, Runner, models.RepoRef) (*models.Report, error)) error {
	runner, cfg, err := provide(ctx, cmd)
	if err != nil {
		return err
	}

	repo := models.RepoRef{Owner: cfg.GitHub.Owner, Name: cfg.GitHub.Repo}
	if s := cmd.String("repo"); s != "" {
		if repo, err = ParseRepo(s); err != nil {
			return err
		}
	}
	if repo.IsZero() {
		return domainErrors.ErrRepoMissing
	}

	var report *models.Report
	err = ui.WithSpinner(cmd.Name+" of "+repo.String(), func() error {
		report, err = do(ctx, runner, repo)
		return err
	})
	if err != nil {
		return err
	}

	out := writer(cmd)
	if cmd.Bool("json") {
		return PrintJSON(out, report)
	}
	PrintReport(out, report, cmd.Bool("verbose"))
	return nil
}

// ParseRepo accepts owner/name, an SSH remote or an HTTPS URL.
func ParseRepo(s string) (models.RepoRef, error) {
	for _, re := range []struct {
		match func(string) []string
		owner int
		name  int
	}{
		{regex.RepoSlug.FindStringSubmatch, 1, 2},
		{regex.SSHRepo.FindStringSubmatch, 2, 3},
		{regex.HTTPSRepo.FindStringSubmatch, 2, 3},
	} {
		if m := re.match(s); m != nil {
			return models.RepoRef{Owner: m[re.owner], Name: m[re.name]}, nil
		}
	}
	return models.RepoRef{}, domainErrors.ErrInvalidConfig.
		WithError(fmt.Errorf("cannot parse repository %q", s)).
		WithSuggestion("Use owner/name, git@github.com:owner/name.git or https://github.com/owner/name")
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

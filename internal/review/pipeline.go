package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/reviewbot/internal/ai"
	"github.com/thomas-vilte/reviewbot/internal/diff"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/logger"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
)

// DefaultMaxDiffLines bounds the diff sent to the generator.
const DefaultMaxDiffLines = 500

// Pipeline reviews a single candidate end to end.
type Pipeline struct {
	vcs          vcs.SourceControl
	generator    ai.SummaryGenerator
	limiter      *RateLimiter
	composer     *Composer
	maxDiffLines int
}

func NewPipeline(sc vcs.SourceControl, generator ai.SummaryGenerator, limiter *RateLimiter, composer *Composer, maxDiffLines int) *Pipeline {
	if maxDiffLines <= 0 {
		maxDiffLines = DefaultMaxDiffLines
	}
	return &Pipeline{
		vcs:          sc,
		generator:    generator,
		limiter:      limiter,
		composer:     composer,
		maxDiffLines: maxDiffLines,
	}
}

// Review runs every step for c and returns exactly one outcome. It never
// panics; a panic in any step becomes Error(unknown).
func (p *Pipeline) Review(ctx context.Context, repo models.RepoRef, c models.Candidate) (out models.Outcome) {
	ctx = logger.With(ctx, "pr", c.Number)

	defer func() {
		if r := recover(); r != nil {
			err := domainErrors.ErrPanic.WithError(fmt.Errorf("%v", r)).WithContext("pr_number", c.Number)
			logger.Error(ctx, "review panicked", err)
			out = models.Failed(c.Number, models.ReasonUnknown, err)
		}
	}()

	if !c.FileCountKnown() {
		full, err := p.vcs.GetCandidate(ctx, repo, c.Number)
		if err != nil {
			logger.Error(ctx, "failed to hydrate pull request", err)
			return models.Failed(c.Number, models.ReasonFetchFailed, err)
		}
		c = full
	}

	if reason, ok := CheckEligibility(c); !ok {
		logger.Debug(ctx, "pull request not eligible", "reason", reason)
		return models.Skipped(c.Number, reason)
	}

	if c.HeadSHA != "" {
		state, err := p.vcs.GetCombinedStatus(ctx, repo, c.HeadSHA)
		if err != nil {
			logger.Error(ctx, "failed to fetch CI status", err, "sha", c.HeadSHA)
			return models.Failed(c.Number, models.ReasonFetchFailed, err)
		}
		if state == models.CIFailure {
			logger.Info(ctx, "skipping pull request with failing CI", "sha", c.HeadSHA)
			return models.Skipped(c.Number, models.ReasonCIFailure)
		}
	}

	patch, err := p.vcs.GetDiff(ctx, repo, c.Number)
	if err != nil {
		logger.Error(ctx, "failed to fetch diff", err)
		return models.Failed(c.Number, models.ReasonFetchFailed, err)
	}

	patch, truncated := diff.Truncate(patch, p.maxDiffLines)
	if truncated {
		logger.Debug(ctx, "diff truncated", "max_lines", p.maxDiffLines)
	}

	text, err := p.generator.GenerateSummary(ctx, patch, truncated)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ai.ErrNoContent
	}
	if err != nil {
		logger.Error(ctx, "failed to generate summary", err)
		return models.Failed(c.Number, models.ReasonSummaryFailed, err)
	}

	fields := WithDefaults(ParseSummary(text), p.composer.Defaults(c.ChangedFiles))
	body := p.composer.Compose(fields, truncated)

	if err := p.vcs.PostComment(ctx, repo, c.Number, body); err != nil {
		logger.Error(ctx, "failed to post review", err)
		return models.Failed(c.Number, models.ReasonPublishFailed, err)
	}

	p.limiter.Increment()
	logger.Info(ctx, "review posted", "truncated", truncated)
	return models.Reviewed(c.Number)
}

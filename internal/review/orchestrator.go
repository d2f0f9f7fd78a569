package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thomas-vilte/reviewbot/internal/ai"
	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/i18n"
	"github.com/thomas-vilte/reviewbot/internal/logger"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
)

const (
	TriggerSweep    = "sweep"
	TriggerBackfill = "backfill"
	TriggerEvent    = "event"
)

// Orchestrator drives the three trigger shapes over the same pipeline.
type Orchestrator struct {
	clients   vcs.ClientProvider
	generator ai.SummaryGenerator
	composer  *Composer
	trans     *i18n.Translations
	limiter   *RateLimiter
	cfg       config.ReviewConfig
	clock     Clock
}

type Option func(*Orchestrator)

// WithRateLimiter shares limiter between orchestrators of one process.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(o *Orchestrator) {
		o.limiter = limiter
	}
}

func WithClock(clock Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

func NewOrchestrator(clients vcs.ClientProvider, generator ai.SummaryGenerator, trans *i18n.Translations, cfg config.ReviewConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		clients:   clients,
		generator: generator,
		composer:  NewComposer(cfg.BotName, cfg.FooterURL, trans),
		trans:     trans,
		cfg:       cfg,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.limiter == nil {
		o.limiter = NewRateLimiter(cfg.RateLimit, o.clock)
	}
	return o
}

// Limiter exposes the rate limiter, mainly for status reporting.
func (o *Orchestrator) Limiter() *RateLimiter {
	return o.limiter
}

// Sweep visits open candidates one at a time in listing order and stops
// once reviewed plus errored reaches the sweep cap.
func (o *Orchestrator) Sweep(ctx context.Context, repo models.RepoRef) (*models.Report, error) {
	ctx, budget := o.startRun(ctx, TriggerSweep, repo)

	sc, candidates, err := o.list(ctx, repo)
	if err != nil {
		return nil, err
	}

	eligible, outcomes := partitionEligible(candidates)
	dedup := NewDedupChecker(sc)
	pipeline := o.pipeline(sc)

	var (
		handled     int
		gated       bool
		rateLimited bool
		pending     int
	)

	for i, c := range eligible {
		if handled >= o.cfg.SweepCap {
			outcomes = append(outcomes, deferAll(eligible[i:], models.ReasonSweepCap)...)
			break
		}
		if ctx.Err() != nil || !budget.Allows(o.cfg.ReviewThreshold) {
			logger.Warn(ctx, "budget exhausted, deferring remaining candidates", "deferred", len(eligible)-i)
			outcomes = append(outcomes, deferAll(eligible[i:], models.ReasonTimeoutBeforeCheck)...)
			break
		}

		out, proceed := o.checkExisting(ctx, dedup, repo, c)
		if !proceed {
			if out.Status == models.StatusError {
				handled++
			}
			outcomes = append(outcomes, out)
			continue
		}

		if !gated {
			gated = true
			if !o.limiter.Check() {
				rateLimited = true
				pending = len(eligible) - i
				logger.Warn(ctx, "rate limit reached, stopping before review", "pending", pending)
				outcomes = append(outcomes, deferAll(eligible[i:], models.ReasonRateLimited)...)
				break
			}
		}

		out = pipeline.Review(ctx, repo, c)
		if out.Status == models.StatusReviewed || out.Status == models.StatusError {
			handled++
		}
		outcomes = append(outcomes, out)
	}

	return o.finish(ctx, TriggerSweep, repo, budget, outcomes, rateLimited, pending), nil
}

// Backfill checks every open candidate for an existing review in budgeted
// groups, then reviews the survivors in smaller budgeted groups.
func (o *Orchestrator) Backfill(ctx context.Context, repo models.RepoRef) (*models.Report, error) {
	ctx, budget := o.startRun(ctx, TriggerBackfill, repo)

	sc, candidates, err := o.list(ctx, repo)
	if err != nil {
		return nil, err
	}

	eligible, outcomes := partitionEligible(candidates)
	dedup := NewDedupChecker(sc)

	type checked struct {
		candidate models.Candidate
		outcome   models.Outcome
		proceed   bool
	}

	results := RunGroups(ctx, NewScheduler(budget, o.cfg.CheckBatchSize, o.cfg.CheckThreshold), eligible,
		func(ctx context.Context, c models.Candidate) checked {
			out, proceed := o.checkExisting(ctx, dedup, repo, c)
			return checked{candidate: c, outcome: out, proceed: proceed}
		},
		func(c models.Candidate) checked {
			return checked{candidate: c, outcome: models.Deferred(c.Number, models.ReasonTimeoutBeforeCheck)}
		})

	var toReview []models.Candidate
	for _, r := range results {
		if r.proceed {
			toReview = append(toReview, r.candidate)
			continue
		}
		outcomes = append(outcomes, r.outcome)
	}

	logger.Info(ctx, "existing reviews checked",
		"eligible", len(eligible),
		"to_review", len(toReview))

	if len(toReview) > 0 && !o.limiter.Check() {
		logger.Warn(ctx, "rate limit reached, stopping before review", "pending", len(toReview))
		outcomes = append(outcomes, deferAll(toReview, models.ReasonRateLimited)...)
		return o.finish(ctx, TriggerBackfill, repo, budget, outcomes, true, len(toReview)), nil
	}

	pipeline := o.pipeline(sc)
	reviewed := RunGroups(ctx, NewScheduler(budget, o.cfg.ProcessBatch, o.cfg.ReviewThreshold), toReview,
		func(ctx context.Context, c models.Candidate) models.Outcome {
			return pipeline.Review(ctx, repo, c)
		},
		func(c models.Candidate) models.Outcome {
			return models.Deferred(c.Number, models.ReasonTimeoutBeforeReview)
		})
	outcomes = append(outcomes, reviewed...)

	return o.finish(ctx, TriggerBackfill, repo, budget, outcomes, false, 0), nil
}

// ReviewOne reviews a single candidate announced by an event, resolving the
// repository client through the provider.
func (o *Orchestrator) ReviewOne(ctx context.Context, repo models.RepoRef, c models.Candidate) (*models.Report, error) {
	sc, err := o.clients.ForRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	return o.ReviewOneWith(ctx, sc, repo, c), nil
}

// ReviewOneWith is ReviewOne with an already authorized client. Only the
// rate limit gate and the pipeline's own checks apply.
func (o *Orchestrator) ReviewOneWith(ctx context.Context, sc vcs.SourceControl, repo models.RepoRef, c models.Candidate) *models.Report {
	ctx, budget := o.startRun(ctx, TriggerEvent, repo)

	if !o.limiter.Check() {
		logger.Warn(ctx, "rate limit reached, not reviewing", "pr", c.Number)
		outcomes := []models.Outcome{models.Deferred(c.Number, models.ReasonRateLimited)}
		return o.finish(ctx, TriggerEvent, repo, budget, outcomes, true, 1)
	}

	out := o.pipeline(sc).Review(ctx, repo, c)
	return o.finish(ctx, TriggerEvent, repo, budget, []models.Outcome{out}, false, 0)
}

// startRun opens the run's budget before any remote call, so client
// authorization and listing are paid from it too.
func (o *Orchestrator) startRun(ctx context.Context, trigger string, repo models.RepoRef) (context.Context, *Budget) {
	ctx = logger.With(ctx,
		"run_id", uuid.NewString(),
		"trigger", trigger,
		"repo", repo.String())
	logger.Debug(ctx, "run started", "rate_limit_used", o.limiter.Count())
	return ctx, NewBudget(o.cfg.Budget(), o.clock)
}

func (o *Orchestrator) list(ctx context.Context, repo models.RepoRef) (vcs.SourceControl, []models.Candidate, error) {
	if repo.IsZero() {
		return nil, nil, domainErrors.ErrRepoMissing
	}

	sc, err := o.clients.ForRepo(ctx, repo)
	if err != nil {
		logger.Error(ctx, "failed to authorize repository client", err)
		return nil, nil, err
	}

	candidates, err := sc.ListOpenCandidates(ctx, repo)
	if err != nil {
		logger.Error(ctx, "failed to list open pull requests", err)
		return nil, nil, err
	}

	logger.Info(ctx, "open pull requests listed", "count", len(candidates))
	return sc, candidates, nil
}

func (o *Orchestrator) pipeline(sc vcs.SourceControl) *Pipeline {
	return NewPipeline(sc, o.generator, o.limiter, o.composer, o.cfg.MaxDiffLines)
}

// checkExisting returns proceed=true when c has no review yet. Otherwise
// out is the candidate's final outcome.
func (o *Orchestrator) checkExisting(ctx context.Context, dedup *DedupChecker, repo models.RepoRef, c models.Candidate) (out models.Outcome, proceed bool) {
	defer func() {
		if r := recover(); r != nil {
			err := domainErrors.ErrPanic.WithError(fmt.Errorf("%v", r)).WithContext("pr_number", c.Number)
			logger.Error(ctx, "existing review check panicked", err)
			out, proceed = models.Failed(c.Number, models.ReasonUnknown, err), false
		}
	}()

	exists, err := dedup.HasExistingReview(ctx, repo, c)
	if err != nil {
		logger.Error(ctx, "failed to list comments", err, "pr", c.Number)
		return models.Failed(c.Number, models.ReasonFetchFailed, err), false
	}
	if exists {
		logger.Debug(ctx, "already reviewed", "pr", c.Number)
		return models.Skipped(c.Number, models.ReasonAlreadyReviewed), false
	}
	return models.Outcome{}, true
}

func (o *Orchestrator) finish(ctx context.Context, trigger string, repo models.RepoRef, budget *Budget, outcomes []models.Outcome, rateLimited bool, pending int) *models.Report {
	report := Aggregate(outcomes, budget.Elapsed())
	report.Trigger = trigger
	report.Repo = repo.String()
	report.RateLimited = rateLimited
	report.Pending = pending

	switch {
	case rateLimited:
		report.Hint = o.trans.GetMessage("report_rate_limited_hint", pending, map[string]interface{}{"Count": pending})
	case report.NeedsFollowUp:
		report.Hint = o.trans.GetMessage("report_follow_up_hint", report.Deferred, map[string]interface{}{"Count": report.Deferred})
	}

	logger.Info(ctx, "run finished",
		"total", report.Total,
		"reviewed", report.Reviewed,
		"skipped", report.Skipped,
		"errors", report.Errored,
		"deferred", report.Deferred,
		"elapsed_ms", report.ElapsedMs)

	return &report
}

func deferAll(candidates []models.Candidate, reason models.Reason) []models.Outcome {
	outcomes := make([]models.Outcome, 0, len(candidates))
	for _, c := range candidates {
		outcomes = append(outcomes, models.Deferred(c.Number, reason))
	}
	return outcomes
}

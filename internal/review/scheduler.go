package review

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thomas-vilte/reviewbot/internal/logger"
)

// Scheduler runs work in sequential groups under a wall-clock budget.
type Scheduler struct {
	budget    *Budget
	groupSize int
	threshold time.Duration
}

func NewScheduler(budget *Budget, groupSize int, threshold time.Duration) *Scheduler {
	if groupSize <= 0 {
		groupSize = 1
	}
	return &Scheduler{budget: budget, groupSize: groupSize, threshold: threshold}
}

// RunGroups applies work to every item. Items of one group run concurrently
// and the group is joined before the next one starts. Before each group the
// remaining budget is compared to the threshold; when it is short, or ctx is
// done, every item not yet started gets deferred(item) instead. Results keep
// the order of items.
func RunGroups[T, R any](ctx context.Context, s *Scheduler, items []T, work func(context.Context, T) R, deferred func(T) R) []R {
	results := make([]R, len(items))

	for start := 0; start < len(items); start += s.groupSize {
		if ctx.Err() != nil || !s.budget.Allows(s.threshold) {
			logger.Warn(ctx, "budget exhausted, deferring remaining items",
				"remaining", s.budget.Remaining(),
				"deferred", len(items)-start)
			for i := start; i < len(items); i++ {
				results[i] = deferred(items[i])
			}
			return results
		}

		end := min(start+s.groupSize, len(items))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.groupSize)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = work(gctx, items[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}

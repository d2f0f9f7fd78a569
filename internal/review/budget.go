package review

import "time"

// Budget is the wall-clock allowance of one orchestration run.
type Budget struct {
	start time.Time
	total time.Duration
	clock Clock
}

func NewBudget(total time.Duration, clock Clock) *Budget {
	if clock == nil {
		clock = time.Now
	}
	return &Budget{start: clock(), total: total, clock: clock}
}

func (b *Budget) Elapsed() time.Duration {
	return b.clock().Sub(b.start)
}

// Remaining never goes below zero.
func (b *Budget) Remaining() time.Duration {
	left := b.total - b.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// Allows reports whether at least threshold is left.
func (b *Budget) Allows(threshold time.Duration) bool {
	return b.Remaining() >= threshold
}

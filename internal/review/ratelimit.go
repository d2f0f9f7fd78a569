package review

import (
	"sync"
	"time"
)

// DefaultRateLimit is the number of reviews allowed per hour bucket.
const DefaultRateLimit = 20

// Clock returns the current time. Tests replace it to move between buckets.
type Clock func() time.Time

// RateLimiter counts issued reviews per wall-clock hour. State lives in
// memory only: it is lost on restart and not shared between processes.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	clock  Clock
	window map[int64]int
}

func NewRateLimiter(limit int, clock Clock) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if clock == nil {
		clock = time.Now
	}
	return &RateLimiter{
		limit:  limit,
		clock:  clock,
		window: make(map[int64]int),
	}
}

// Check reports whether another review may be issued in the current hour.
// It does not reserve a slot.
func (r *RateLimiter) Check() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.bucket()
	r.purge(bucket)
	return r.window[bucket] < r.limit
}

// Increment records one issued review in the current hour.
func (r *RateLimiter) Increment() {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.bucket()
	r.purge(bucket)
	r.window[bucket]++
}

// Count returns the reviews issued in the current hour.
func (r *RateLimiter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.bucket()
	r.purge(bucket)
	return r.window[bucket]
}

func (r *RateLimiter) bucket() int64 {
	return r.clock().Unix() / 3600
}

// purge drops every bucket older than current.
func (r *RateLimiter) purge(current int64) {
	for b := range r.window {
		if b < current {
			delete(r.window, b)
		}
	}
}

// Package ratelimiter throttles calls against the provider's rate limit.
package ratelimiter

import (
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface limits how often an operation may run.
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiter allows up to limit calls per interval and sleeps callers that
// exceed it until the window resets. Safe for concurrent use; the scheduled
// job, async syncs and admin batches all share one instance.
type RateLimiter struct {
	limit    int
	interval time.Duration

	mu        sync.Mutex
	count     int
	lastReset time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit calls per interval.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// WaitIfNeeded counts one call and blocks until the next window when the
// current one is exhausted.
func (rl *RateLimiter) WaitIfNeeded() {
	rl.mu.Lock()
	now := time.Now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		rl.mu.Unlock()
		return
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	rl.count = 1
	rl.lastReset = now.Add(sleep)
	rl.mu.Unlock()

	if sleep > 0 {
		slog.Warn("provider rate limit hit, pausing", "limit", rl.limit, "sleep", sleep)
		time.Sleep(sleep)
	}
}

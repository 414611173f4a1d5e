package ratelimiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_WithinLimitDoesNotBlock(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, time.Second)

	start := time.Now()
	for i := 0; i < 5; i++ {
		rl.WaitIfNeeded()
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_BlocksWhenExhausted(t *testing.T) {
	t.Parallel()

	interval := 200 * time.Millisecond
	rl := NewRateLimiter(2, interval)

	rl.WaitIfNeeded()
	rl.WaitIfNeeded()

	start := time.Now()
	rl.WaitIfNeeded() // third call must wait for the window to reset
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	t.Parallel()

	interval := 100 * time.Millisecond
	rl := NewRateLimiter(1, interval)

	rl.WaitIfNeeded()
	time.Sleep(interval + 20*time.Millisecond)

	start := time.Now()
	rl.WaitIfNeeded()
	assert.Less(t, time.Since(start), 50*time.Millisecond, "a fresh window must not block")
}

func TestRateLimiter_ConcurrentUse(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(100, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rl.WaitIfNeeded()
		}()
	}
	wg.Wait()
}

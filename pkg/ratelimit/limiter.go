package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for pacing outgoing requests
type Limiter interface {
	// Wait blocks until the next request may proceed or ctx is done
	Wait(ctx context.Context) error
	// Reset clears any accumulated state
	Reset()
}

// FixedDelay pauses for the same duration on every Wait
type FixedDelay struct {
	delay time.Duration
	after func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	pauses int
	waited time.Duration
}

// NewFixedDelay creates a limiter that pauses for delay on each Wait.
// A zero delay makes Wait return immediately.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{
		delay: delay,
		after: time.After,
	}
}

// Wait sleeps for the configured delay
func (f *FixedDelay) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.pauses++
	f.mu.Unlock()

	if f.delay <= 0 {
		return nil
	}

	start := time.Now()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.after(f.delay):
	}

	f.mu.Lock()
	f.waited += time.Since(start)
	f.mu.Unlock()
	return nil
}

// Reset zeroes the pause counters
func (f *FixedDelay) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pauses = 0
	f.waited = 0
}

// Pauses returns how many times Wait was entered since the last Reset
func (f *FixedDelay) Pauses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses
}

// Waited returns the total time spent sleeping since the last Reset
func (f *FixedDelay) Waited() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waited
}

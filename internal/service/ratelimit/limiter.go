package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces calls per key: two calls for the same key start at least
// the configured interval apart. Callers queue in arrival order.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     map[string]time.Time
	now      func() time.Time
}

func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		next:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Interval returns the minimum spacing between calls.
func (l *Limiter) Interval() time.Duration { return l.interval }

// Wait blocks until the caller may proceed for key. A cancelled context
// returns its error; the reserved slot is not given back.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	now := l.now()
	slot := l.next[key]
	if slot.Before(now) {
		slot = now
	}
	l.next[key] = slot.Add(l.interval)
	l.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

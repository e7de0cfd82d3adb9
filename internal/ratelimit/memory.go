package ratelimit

import (
	"context"
	"time"

	"task-tracker-api/internal/cache"
)

// MemoryLimiter is a fixed-window limiter for a single process.
type MemoryLimiter struct {
	rates   map[string]Rate
	buckets *cache.SimpleCache[string, int]
	now     func() time.Time
}

// NewMemoryLimiter builds a MemoryLimiter. clock may be nil.
func NewMemoryLimiter(rates map[string]Rate, clock func() time.Time) *MemoryLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryLimiter{
		rates:   rates,
		buckets: cache.NewSimpleCache[string, int](cache.Options{ConcurrencySafe: true, Clock: clock}),
		now:     clock,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, scope, key string) (Decision, error) {
	rate, ok := l.rates[scope]
	if !ok {
		return Decision{Allowed: true}, nil
	}

	count, expiresAt := l.buckets.Upsert(bucketKey("", scope, key), rate.Window, func(old int, found bool) int {
		if !found {
			return 1
		}
		return old + 1
	})
	if count > rate.Limit {
		return Decision{Allowed: false, RetryAfter: expiresAt.Sub(l.now())}, nil
	}
	return Decision{Allowed: true, Remaining: rate.Limit - count}, nil
}

// Purge drops expired windows.
func (l *MemoryLimiter) Purge() {
	l.buckets.PurgeExpired()
}

var _ Limiter = (*MemoryLimiter)(nil)

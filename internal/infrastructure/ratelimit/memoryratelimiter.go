package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter keeps one token bucket per key. The bucket holds limit
// tokens and refills one token every window/limit.
type MemoryRateLimiter struct {
	limit int
	every rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:    limit,
		every:    rate.Every(window / time.Duration(limit)),
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.limit)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.AllowN(l.now(), 1), nil
}

func (l *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
	return nil
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

func TestMemoryRateLimiter_BurstThenRefill(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryRateLimiter(5, time.Hour)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "nova")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
	allowed, _ := limiter.Allow(ctx, "nova")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(ctx, "vega")
	assert.True(t, allowed, "other identities have their own bucket")

	clock = clock.Add(12 * time.Minute)
	allowed, _ = limiter.Allow(ctx, "nova")
	assert.True(t, allowed, "one token refills every window/limit")
	allowed, _ = limiter.Allow(ctx, "nova")
	assert.False(t, allowed)
}

func TestMemoryRateLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryRateLimiter(1, time.Hour)

	allowed, _ := limiter.Allow(ctx, "nova")
	require.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "nova")
	require.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "nova"))
	allowed, _ = limiter.Allow(ctx, "nova")
	assert.True(t, allowed)
}

func TestNew(t *testing.T) {
	log := logger.NewNopLogger()

	l, err := New(sharedConfig.RateLimitConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryRateLimiter{}, l)

	l, err = New(sharedConfig.RateLimitConfig{RequestsPerHour: -1}, log)
	require.NoError(t, err)
	assert.IsType(t, Unlimited{}, l)

	l, err = New(sharedConfig.RateLimitConfig{Backend: "redis", Redis: sharedConfig.RedisConfig{Addr: "127.0.0.1:1"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &RedisRateLimiter{}, l)

	_, err = New(sharedConfig.RateLimitConfig{Backend: "etcd"}, log)
	assert.Error(t, err)
}

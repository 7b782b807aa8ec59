// Package ratelimit limits how often one chat identity may run the commands
// that create records.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// RateLimiter admits at most Limit events per Window for each key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

const defaultRequestsPerHour = 5

// New builds the limiter selected by cfg. A zero requests_per_hour falls
// back to the default; a negative one disables limiting.
func New(cfg sharedConfig.RateLimitConfig, log logger.Interface) (RateLimiter, error) {
	limit := cfg.RequestsPerHour
	if limit == 0 {
		limit = defaultRequestsPerHour
	}
	if limit < 0 {
		return Unlimited{}, nil
	}

	switch cfg.Backend {
	case "", "memory":
		log.Infow("using in-memory rate limiter", "requests_per_hour", limit)
		return NewMemoryRateLimiter(limit, time.Hour), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Infow("using redis rate limiter", "addr", cfg.Redis.Addr, "requests_per_hour", limit)
		return NewRedisRateLimiter(client, limit, time.Hour), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}

// Unlimited admits everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

func (Unlimited) Reset(context.Context, string) error { return nil }

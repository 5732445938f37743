// file: service/rate_limiter.go

package service

import (
	"context"
	"fmt"
	"time"

	"bizpilot-api/logger"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter over Redis, applied to the
// credential endpoints. It fails open: an unreachable Redis must not take
// login down with it.
type RateLimiter struct {
	client ICacheClient
	limit  int64
	window time.Duration
}

// ICacheClient defines the contract for the cache client backing the rate
// limiter. The abstraction decouples it from a concrete Redis connection,
// enabling easier testing.
type ICacheClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func NewRateLimiter(client ICacheClient, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow reports whether another request under the given key fits in the
// current window.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	if l.client == nil {
		return true
	}

	redisKey := fmt.Sprintf("ratelimit:%s", key)
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.Log.WithError(err).Warn("Rate limiter unavailable; allowing request")
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}
	return count <= l.limit
}

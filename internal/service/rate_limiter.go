package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/prperemyshlev/wms-server/pkg/database"
)

// RateLimitError reports a rejected request and when the next one may succeed
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, try again in %v", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// Allow records a request under key using a sliding window log.
// A rejected request returns a *RateLimitError.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) error {
	now := r.now()
	redisKey := "ratelimit:" + key

	var count *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
		count = pipe.ZCard(ctx, redisKey)
		oldest = pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read rate limit window: %w", err)
	}

	if count.Val() >= int64(limit) {
		retryAfter := window
		if entries := oldest.Val(); len(entries) > 0 {
			retryAfter = window - now.Sub(time.Unix(0, int64(entries[0].Score)))
		}
		return &RateLimitError{RetryAfter: max(retryAfter, time.Second)}
	}

	_, err = r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, redisKey, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: uuid.NewString(),
		})
		pipe.Expire(ctx, redisKey, window+time.Minute)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	return nil
}

// Remaining returns the number of requests still allowed in the current window
func (r *RateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	redisKey := "ratelimit:" + key

	var count *redis.IntCmd
	_, err := r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(r.now().Add(-window).UnixNano(), 10))
		count = pipe.ZCard(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read rate limit window: %w", err)
	}

	return max(limit-int(count.Val()), 0), nil
}

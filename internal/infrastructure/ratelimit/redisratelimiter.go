// Package ratelimit throttles the unauthenticated auth endpoints per client.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/cache"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
)

// Result describes one rate limit decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is set when the request was refused.
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Reset(ctx context.Context, key string) error
}

// RedisRateLimiter is a sliding-window limiter over a redis sorted set per
// key. Every request is a member scored by its arrival time.
type RedisRateLimiter struct {
	client   *redis.Client
	keyspace cache.Keyspace
	limit    int
	window   time.Duration
	now      biztime.Clock
}

func NewRedisRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		keyspace: cache.Keyspace(prefix),
		limit:    limit,
		window:   window,
		now:      biztime.NowUTC,
	}
}

// WithClock replaces the time source. Tests only.
func (l *RedisRateLimiter) WithClock(clock biztime.Clock) *RedisRateLimiter {
	l.now = clock
	return l
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := l.now()
	redisKey := l.getKey(key)
	windowStart := now.Add(-l.window).UnixNano()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcard.Val())
	if count >= l.limit {
		retryAfter := l.window
		if z := oldest.Val(); len(z) > 0 {
			retryAfter = time.Unix(0, int64(z[0].Score)).Add(l.window).Sub(now)
		}
		return &Result{Allowed: false, Limit: l.limit, RetryAfter: retryAfter}, nil
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record request: %w", err)
	}

	return &Result{Allowed: true, Limit: l.limit, Remaining: l.limit - count - 1}, nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.getKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

func (l *RedisRateLimiter) getKey(identifier string) string {
	return l.keyspace.Key("ratelimit", identifier)
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	client, _ := setupTestRedis(t)
	clock := &testClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	limiter := NewRedisRateLimiter(client, "test", 5, time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 4-i, res.Remaining)
		clock.Advance(time.Second)
	}

	res, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, res.Allowed, "6th request should be denied")
	assert.Equal(t, 55*time.Second, res.RetryAfter)

	other, err := limiter.Allow(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are limited independently")
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	client, _ := setupTestRedis(t)
	clock := &testClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	limiter := NewRedisRateLimiter(client, "test", 2, time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	clock.Advance(time.Minute + time.Second)
	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, "test", 1, time.Minute)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, res.Allowed)
	assert.True(t, mr.Exists("test:ratelimit:k"))

	require.NoError(t, limiter.Reset(ctx, "k"))
	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

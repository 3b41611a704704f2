package redis

import (
	"context"
	"testing"
	"time"

	"pyra-workspace/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_AllowWithinLimit(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "login:10.0.0.1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimitStore_BlocksOverLimit(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	var last *ports.RateLimitResult
	for i := 0; i < 4; i++ {
		result, err := store.Allow(ctx, "login:10.0.0.2", 3, time.Minute)
		require.NoError(t, err)
		last = result
	}

	require.NotNil(t, last)
	assert.False(t, last.Allowed, "4th request over a limit of 3 should be blocked")
	assert.Equal(t, int64(0), last.Remaining)
}

func TestRateLimitStore_SeparateKeys(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	_, err := store.Allow(ctx, "login:10.0.0.3", 1, time.Minute)
	require.NoError(t, err)

	result, err := store.Allow(ctx, "login:10.0.0.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "a different key has its own counter")
}

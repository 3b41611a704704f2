package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_SaveExistsDelete(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewSessionStore(client)
	ctx := context.Background()

	sessionID := uuid.New().String()

	ok, err := store.Exists(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = store.Save(ctx, sessionID, uuid.New(), time.Hour)
	require.NoError(t, err)

	ok, err = store.Exists(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = store.Delete(ctx, sessionID)
	require.NoError(t, err)

	ok, err = store.Exists(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, ok, "deleted session should be gone")
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewSessionStore(client)
	ctx := context.Background()

	sessionID := uuid.New().String()
	err := store.Save(ctx, sessionID, uuid.New(), time.Second)
	require.NoError(t, err)

	s.FastForward(2 * time.Second)

	ok, err := store.Exists(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, ok, "expired session should be gone")
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launcify/launcify-api/pkg/logger"
)

func init() {
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func TestMemoryStore_Hit(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		limited, err := store.Hit(ctx, "10.0.0.1", 6, time.Minute)
		require.NoError(t, err)
		assert.False(t, limited, "attempt %d should pass", i+1)
	}

	limited, err := store.Hit(ctx, "10.0.0.1", 6, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited, "seventh attempt should be rejected")
}

func TestMemoryStore_Hit_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	limited, err := store.Hit(ctx, "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, limited)

	limited, err = store.Hit(ctx, "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited)

	limited, err = store.Hit(ctx, "10.0.0.2", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, limited, "a second caller has its own counter")
}

func TestMemoryStore_Hit_WindowReset(t *testing.T) {
	window := 30 * time.Millisecond
	store := NewMemoryStore(window)
	ctx := context.Background()

	limited, err := store.Hit(ctx, "10.0.0.1", 1, window)
	require.NoError(t, err)
	assert.False(t, limited)

	limited, err = store.Hit(ctx, "10.0.0.1", 1, window)
	require.NoError(t, err)
	assert.True(t, limited)

	time.Sleep(2 * window)

	limited, err = store.Hit(ctx, "10.0.0.1", 1, window)
	require.NoError(t, err)
	assert.False(t, limited, "a fresh window starts after expiry")
}

func TestMemoryStore_Hit_RejectedAttemptDoesNotExtendWindow(t *testing.T) {
	window := 50 * time.Millisecond
	store := NewMemoryStore(window)
	ctx := context.Background()

	_, err := store.Hit(ctx, "10.0.0.1", 1, window)
	require.NoError(t, err)

	// Hammering a limited key must not keep the window alive.
	for i := 0; i < 5; i++ {
		limited, err := store.Hit(ctx, "10.0.0.1", 1, window)
		require.NoError(t, err)
		assert.True(t, limited)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(2 * window)

	limited, err := store.Hit(ctx, "10.0.0.1", 1, window)
	require.NoError(t, err)
	assert.False(t, limited)
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisStore(client), mr
}

func TestRedisStore_Hit(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limited, err := store.Hit(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, limited, "attempt %d should pass", i+1)
	}

	limited, err := store.Hit(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited)
}

func TestRedisStore_Hit_RejectedAttemptDoesNotIncrement(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Hit(ctx, "10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
	}

	count, err := mr.Get("ratelimit:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "2", count, "counter stops at the limit")
}

func TestRedisStore_Hit_WindowReset(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	limited, err := store.Hit(ctx, "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, limited)

	limited, err = store.Hit(ctx, "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited)

	mr.FastForward(time.Minute + time.Second)

	limited, err = store.Hit(ctx, "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestRedisStore_Hit_ServerDown(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.Hit(context.Background(), "10.0.0.1", 6, time.Minute)
	assert.Error(t, err)
}

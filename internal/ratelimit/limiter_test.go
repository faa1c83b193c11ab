package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type failingStore struct {
	calls int
}

func (s *failingStore) Hit(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	s.calls++
	return false, errors.New("connection refused")
}

func TestLimiter_IsLimited_LocalOnly(t *testing.T) {
	limiter := New(Options{Limit: 2, Window: time.Minute})
	ctx := context.Background()

	assert.False(t, limiter.IsLimited(ctx, "10.0.0.1"))
	assert.False(t, limiter.IsLimited(ctx, "10.0.0.1"))
	assert.True(t, limiter.IsLimited(ctx, "10.0.0.1"))
}

func TestLimiter_IsLimited_SharedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := New(Options{
		Limit:  2,
		Window: time.Minute,
		Shared: NewRedisStore(client),
	})
	ctx := context.Background()

	assert.False(t, limiter.IsLimited(ctx, "10.0.0.1"))
	assert.False(t, limiter.IsLimited(ctx, "10.0.0.1"))
	assert.True(t, limiter.IsLimited(ctx, "10.0.0.1"))

	// The local store was never consulted; its counter is fresh.
	limited, err := limiter.local.Hit(ctx, "10.0.0.1", 2, time.Minute)
	assert.NoError(t, err)
	assert.False(t, limited)
}

func TestLimiter_IsLimited_FailsOverToLocal(t *testing.T) {
	shared := &failingStore{}
	limiter := New(Options{Limit: 2, Window: time.Minute, Shared: shared})
	ctx := context.Background()

	assert.False(t, limiter.IsLimited(ctx, "10.0.0.1"))
	assert.False(t, limiter.IsLimited(ctx, "10.0.0.1"))
	assert.True(t, limiter.IsLimited(ctx, "10.0.0.1"), "local store still enforces the limit")
	assert.Equal(t, 3, shared.calls, "the shared store keeps being retried")
}

func TestLimiter_Accessors(t *testing.T) {
	limiter := New(Options{Limit: 6, Window: 60 * time.Second})

	assert.Equal(t, 6, limiter.Limit())
	assert.Equal(t, 60*time.Second, limiter.Window())
}

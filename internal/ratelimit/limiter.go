package ratelimit

import (
	"context"
	"time"

	"github.com/launcify/launcify-api/pkg/logger"
	"github.com/launcify/launcify-api/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter enforces a fixed-window request limit per caller key. When a
// shared store is configured it is consulted first; if it is unreachable the
// limiter fails open to the local store rather than failing the request.
type Limiter struct {
	shared CounterStore // nil when redis is not configured
	local  CounterStore
	limit  int
	window time.Duration
}

// Options configure a Limiter.
type Options struct {
	Limit  int
	Window time.Duration
	Shared CounterStore // optional
}

// New creates a limiter. The local fallback store is always present.
func New(opts Options) *Limiter {
	return &Limiter{
		shared: opts.Shared,
		local:  NewMemoryStore(opts.Window),
		limit:  opts.Limit,
		window: opts.Window,
	}
}

// NewRedisClient builds the go-redis client for the shared store and
// verifies connectivity. A failed ping is not fatal: the limiter degrades to
// the local store, and later calls keep trying the shared one.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Rate-limit redis unreachable at startup, will retry per request",
			zap.String("addr", addr), zap.Error(err))
	}
	return client
}

// Limit returns the configured per-window limit.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// IsLimited reports whether key has exhausted its window. Store errors never
// reject a request: the shared store failing hands the decision to the local
// one.
func (l *Limiter) IsLimited(ctx context.Context, key string) bool {
	if l.shared != nil {
		limited, err := l.shared.Hit(ctx, key, l.limit, l.window)
		if err == nil {
			return limited
		}
		metrics.RateLimitStoreFallbacks.Inc()
		logger.Warn("Shared counter store unavailable, using local fallback",
			zap.String("key", key), zap.Error(err))
	}

	limited, err := l.local.Hit(ctx, key, l.limit, l.window)
	if err != nil {
		// The memory store cannot actually fail; fail open regardless.
		logger.Error("Local counter store error", zap.Error(err))
		return false
	}
	return limited
}

package ratelimit

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// CounterStore counts requests per key within a fixed window.
type CounterStore interface {
	// Hit records an attempt for key and reports whether the key has
	// exceeded limit for the current window. An attempt at or beyond the
	// limit is rejected without incrementing the counter.
	Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// MemoryStore is the in-process fallback counter store. It is correct for a
// single running instance only: counters are not shared across replicas and
// reset on restart.
type MemoryStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

type windowRecord struct {
	count int
}

// NewMemoryStore creates a local store. Window expiry and purging of stale
// keys are delegated to go-cache's janitor.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		c: gocache.New(window, 2*window),
	}
}

// Hit implements CounterStore. The mutex makes the check-then-increment
// atomic; go-cache treats expired entries as absent, which starts a fresh
// window with count 1.
func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.c.Get(key); ok {
		rec := v.(*windowRecord)
		if rec.count >= limit {
			return true, nil
		}
		rec.count++
		return false, nil
	}

	s.c.Set(key, &windowRecord{count: 1}, window)
	return false, nil
}

// hitScript checks the counter against the limit before incrementing, so a
// rejected attempt leaves the count untouched. The expiry is set only when a
// new window starts.
var hitScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
  return 1
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisStore is the shared counter store. Counters live in redis so the
// limit holds across all server instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Hit implements CounterStore via a Lua script, keeping the window update
// atomic under concurrent instances.
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	res, err := hitScript.Run(ctx, s.client, []string{"ratelimit:" + key}, limit, window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"coalesce"
	"coalesce/resolver"
	"coalesce/scheduler"
)

// RedisGetter is the slice of the Redis client RedisCache needs.
// *redis.Client, *redis.ClusterClient and *redis.Ring all satisfy it.
type RedisGetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// RedisCacheOptions configures a RedisCache.
type RedisCacheOptions struct {
	// Window is how long point reads accumulate before one MGET is
	// issued. Default: 5ms.
	Window time.Duration

	// MaxBatch flushes early once this many distinct keys are pending.
	// Default: 100.
	MaxBatch int
}

// DefaultRedisCacheOptions returns sensible defaults for a RedisCache.
func DefaultRedisCacheOptions() *RedisCacheOptions {
	return &RedisCacheOptions{
		Window:   5 * time.Millisecond,
		MaxBatch: 100,
	}
}

// RedisCache coalesces concurrent point reads into MGET calls. Callers
// use plain Get semantics; reads issued within the same window travel
// to Redis together, and reads for the same key share one lookup.
type RedisCache struct {
	batcher *coalesce.Batcher[string, struct{}, map[string]string, string]
}

// NewRedisCache creates a RedisCache over the given client. If opts is
// nil, defaults are used.
func NewRedisCache(client RedisGetter, opts *RedisCacheOptions) *RedisCache {
	if opts == nil {
		opts = DefaultRedisCacheOptions()
	}

	proc := coalesce.ProcessorFunc[string, struct{}, map[string]string](
		func(ctx context.Context, items []coalesce.Item[string, struct{}]) (map[string]string, error) {
			keys := make([]string, len(items))
			for i, item := range items {
				key, _ := item.Key.Value()
				keys[i] = key
			}

			values, err := client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, err
			}

			combined := make(map[string]string, len(keys))
			for i, value := range values {
				// MGET returns nil for keys that do not exist.
				if s, ok := value.(string); ok {
					combined[keys[i]] = s
				}
			}
			return combined, nil
		})

	batcher := coalesce.New[string, struct{}, map[string]string, string](
		proc, resolver.KeyLookup[string, struct{}, string]{},
	).WithScheduler(scheduler.Window{
		Span:     opts.Window,
		MaxItems: opts.MaxBatch,
	})

	return &RedisCache{batcher: batcher}
}

// Get returns the value stored at key, batching concurrent reads into a
// single MGET. Missing keys return redis.Nil, matching the unbatched
// client. ctx aborts only this caller's wait; other readers of the same
// key are unaffected.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.batcher.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return "", redis.Nil
		}
		var perr *coalesce.ProcessorError
		if errors.As(err, &perr) {
			return "", perr.Err
		}
		return "", err
	}
	return value, nil
}

// Flush dispatches any pending reads immediately.
func (c *RedisCache) Flush() {
	c.batcher.Flush()
}

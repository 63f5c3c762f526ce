// Package pipeline contains synchronous facades built on coalesce.Batcher.
// They let callers make simple per-item calls while batching against a
// real backend happens transparently underneath:
//
// - RedisCache: coalesces point GETs into Redis MGET calls
// - KafkaSink: coalesces per-message publishes into batched writes
//
// Example usage:
//
//	cache := pipeline.NewRedisCache(redisClient, nil)
//	value, err := cache.Get(ctx, "user:123")
package pipeline

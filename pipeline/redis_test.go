package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis serves MGET from an in-memory map and records every call.
type fakeRedis struct {
	mu    sync.Mutex
	data  map[string]string
	calls [][]string
	err   error
}

func (f *fakeRedis) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), keys...))
	if f.err != nil {
		return redis.NewSliceResult(nil, f.err)
	}
	values := make([]interface{}, len(keys))
	for i, key := range keys {
		if value, ok := f.data[key]; ok {
			values[i] = value
		}
	}
	return redis.NewSliceResult(values, nil)
}

func (f *fakeRedis) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testOptions() *RedisCacheOptions {
	return &RedisCacheOptions{Window: 20 * time.Millisecond, MaxBatch: 100}
}

func TestRedisCache_CoalescesReads(t *testing.T) {
	backend := &fakeRedis{data: map[string]string{"k1": "one", "k2": "two"}}
	cache := NewRedisCache(backend, testOptions())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 3)
	failures := make([]error, 3)
	for i, key := range []string{"k1", "k2", "k1"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			results[i], failures[i] = cache.Get(ctx, key)
		}(i, key)
	}
	wg.Wait()

	for i, err := range failures {
		require.NoError(t, err, "read %d", i)
	}
	assert.Equal(t, "one", results[0])
	assert.Equal(t, "two", results[1])
	assert.Equal(t, "one", results[2])

	// Three reads, one round trip, two distinct keys.
	require.Equal(t, 1, backend.callCount())
	assert.Len(t, backend.calls[0], 2)
}

func TestRedisCache_MissingKeyReturnsNil(t *testing.T) {
	backend := &fakeRedis{data: map[string]string{}}
	cache := NewRedisCache(backend, testOptions())

	_, err := cache.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestRedisCache_BackendErrorPropagates(t *testing.T) {
	backendErr := errors.New("connection refused")
	backend := &fakeRedis{err: backendErr}
	cache := NewRedisCache(backend, testOptions())

	_, err := cache.Get(context.Background(), "k1")
	assert.ErrorIs(t, err, backendErr)
}

func TestRedisCache_FlushDispatchesEarly(t *testing.T) {
	backend := &fakeRedis{data: map[string]string{"k1": "one"}}
	cache := NewRedisCache(backend, &RedisCacheOptions{Window: time.Hour, MaxBatch: 100})
	ctx := context.Background()

	done := make(chan string, 1)
	go func() {
		value, _ := cache.Get(ctx, "k1")
		done <- value
	}()

	// Wait for the read to be pending, then force the round trip.
	for backend.callCount() == 0 {
		cache.Flush()
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, "one", <-done)
}

package coalesce_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"coalesce"
)

// capture records every batch handed to the processor.
type capture struct {
	mu      sync.Mutex
	batches [][]coalesce.Item[string, string]
}

func (c *capture) add(items []coalesce.Item[string, string]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := make([]coalesce.Item[string, string], len(items))
	copy(batch, items)
	c.batches = append(c.batches, batch)
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *capture) batch(i int) []coalesce.Item[string, string] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[i]
}

// echoProcessor answers every key with "v:" plus the item's payload,
// recording batches in c. Delay, if set, simulates a slow backend.
// Err, if set, fails the whole batch.
type echoProcessor struct {
	c     *capture
	delay time.Duration
	err   error
}

func (p *echoProcessor) ProcessBatch(_ context.Context, items []coalesce.Item[string, string]) (map[string]string, error) {
	if p.c != nil {
		p.c.add(items)
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	combined := make(map[string]string, len(items))
	for _, item := range items {
		if key, ok := item.Key.Value(); ok {
			combined[key] = "v:" + item.Payload
		}
	}
	return combined, nil
}

var errMissing = errors.New("no result for key")

// mapResolver looks results up by explicit key.
func mapResolver() coalesce.Resolver[string, string, map[string]string, string] {
	return coalesce.ResolverFunc[string, string, map[string]string, string](
		func(combined map[string]string, item coalesce.Item[string, string]) (string, error) {
			key, ok := item.Key.Value()
			if !ok {
				return "", errMissing
			}
			value, ok := combined[key]
			if !ok {
				return "", errMissing
			}
			return value, nil
		})
}

// newEchoBatcher wires an echoProcessor and mapResolver together with a
// fixed accumulation window.
func newEchoBatcher(c *capture, window time.Duration) *coalesce.Batcher[string, string, map[string]string, string] {
	return coalesce.New[string, string, map[string]string, string](
		&echoProcessor{c: c}, mapResolver(),
	).WithScheduler(coalesce.SchedulerFunc(
		func(windowStart, _ time.Time, _ int) time.Duration {
			return window - time.Since(windowStart)
		}))
}

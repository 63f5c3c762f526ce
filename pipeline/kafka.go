package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"coalesce"
	"coalesce/resolver"
	"coalesce/scheduler"
)

// KafkaWriter is the slice of kafka-go's Writer KafkaSink needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSinkOptions configures a KafkaSink.
type KafkaSinkOptions struct {
	// Quiet is the silence after the most recent publish before the
	// batch is written. Default: 2ms.
	Quiet time.Duration

	// MaxWait bounds how long the first message of a batch waits.
	// Default: 20ms.
	MaxWait time.Duration

	// MaxBatch flushes early once this many messages are pending.
	// Default: 200.
	MaxBatch int
}

// DefaultKafkaSinkOptions returns sensible defaults for a KafkaSink.
func DefaultKafkaSinkOptions() *KafkaSinkOptions {
	return &KafkaSinkOptions{
		Quiet:    2 * time.Millisecond,
		MaxWait:  20 * time.Millisecond,
		MaxBatch: 200,
	}
}

// KafkaSink coalesces individual publishes into batched WriteMessages
// calls. Each message is submitted under a generated key, so every
// publish is its own unit and nothing is deduplicated; callers share
// only the physical write.
type KafkaSink struct {
	batcher *coalesce.Batcher[string, kafka.Message, struct{}, struct{}]
}

// NewKafkaSink creates a KafkaSink over the given writer. If opts is
// nil, defaults are used.
func NewKafkaSink(writer KafkaWriter, opts *KafkaSinkOptions) *KafkaSink {
	if opts == nil {
		opts = DefaultKafkaSinkOptions()
	}

	proc := coalesce.ProcessorFunc[string, kafka.Message, struct{}](
		func(ctx context.Context, items []coalesce.Item[string, kafka.Message]) (struct{}, error) {
			msgs := make([]kafka.Message, len(items))
			for i, item := range items {
				msgs[i] = item.Payload
			}
			return struct{}{}, writer.WriteMessages(ctx, msgs...)
		})

	batcher := coalesce.New[string, kafka.Message, struct{}, struct{}](
		proc, resolver.Broadcast[string, kafka.Message, struct{}]{},
	).WithScheduler(scheduler.Debounce{
		Quiet:    opts.Quiet,
		MaxWait:  opts.MaxWait,
		MaxItems: opts.MaxBatch,
	})

	return &KafkaSink{batcher: batcher}
}

// Publish enqueues msg and blocks until the batched write it rode in
// completes, returning the writer's error verbatim if the write failed.
// ctx withdraws the message if it fires before the batch is dispatched.
func (s *KafkaSink) Publish(ctx context.Context, msg kafka.Message) error {
	_, err := s.batcher.SubmitAuto(ctx, msg).Result()
	if err != nil {
		var perr *coalesce.ProcessorError
		if errors.As(err, &perr) {
			return perr.Err
		}
		return err
	}
	return nil
}

// PublishAsync enqueues msg without waiting. The returned handle
// settles when the batched write completes, and can cancel the message
// while it is still pending.
func (s *KafkaSink) PublishAsync(ctx context.Context, msg kafka.Message) *coalesce.Handle[string, struct{}] {
	return s.batcher.SubmitAuto(ctx, msg)
}

// Flush writes any pending messages immediately.
func (s *KafkaSink) Flush() {
	s.batcher.Flush()
}

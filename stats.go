package coalesce

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatsCollector collects metrics from a Batcher. Implementations can
// keep them in memory or forward them to a monitoring system. The
// collector is optional; when none is configured, nothing is recorded.
type StatsCollector interface {
	// RecordEnqueue is called for every submitted request. coalesced
	// reports whether the request joined an already-pending key.
	RecordEnqueue(coalesced bool)

	// RecordFlushStart is called when a batch is dispatched to the
	// processor. size is the number of deduplicated items.
	RecordFlushStart(size int)

	// RecordFlushComplete is called when a successful flush has settled
	// its handles.
	RecordFlushComplete(size int, duration time.Duration)

	// RecordResolved is called for every handle settled with a value.
	RecordResolved()

	// RecordCanceled is called for every handle settled by
	// cancellation. aborted reports whether an abort context, rather
	// than an explicit cancel, settled it.
	RecordCanceled(aborted bool)

	// RecordProcessorError is called when the batch-processing
	// function fails.
	RecordProcessorError()

	// RecordResolverError is called when resolution fails for one item.
	RecordResolverError()

	// GetStats returns a snapshot of the current statistics.
	GetStats() Stats
}

// Stats holds aggregated statistics about a Batcher.
type Stats struct {
	// Requests is the total number of submitted requests (handles).
	Requests uint64

	// Coalesced is the number of requests that joined a key already
	// pending in the batch.
	Coalesced uint64

	// Flushes is the number of batches dispatched to the processor.
	Flushes uint64

	// FlushesCompleted is the number of flushes that succeeded and
	// settled their handles.
	FlushesCompleted uint64

	// Resolved is the number of handles settled with a value.
	Resolved uint64

	// Canceled is the number of handles settled by an explicit cancel.
	Canceled uint64

	// Aborted is the number of handles settled by an abort context.
	Aborted uint64

	// ProcessorErrors is the number of batch-wide processing failures.
	ProcessorErrors uint64

	// ResolverErrors is the number of per-item resolution failures.
	ResolverErrors uint64

	// TotalFlushTime is the cumulative time spent in flushes.
	TotalFlushTime time.Duration

	// MinFlushTime and MaxFlushTime bound observed flush durations.
	MinFlushTime time.Duration
	MaxFlushTime time.Duration

	// MinBatchSize and MaxBatchSize bound observed batch sizes.
	MinBatchSize int
	MaxBatchSize int

	// StartTime is when collection began; LastUpdateTime is when
	// statistics last changed.
	StartTime      time.Time
	LastUpdateTime time.Time
}

// AverageFlushTime returns the mean flush duration, or 0 when no flush
// has completed.
func (s *Stats) AverageFlushTime() time.Duration {
	if s.FlushesCompleted == 0 {
		return 0
	}
	return s.TotalFlushTime / time.Duration(s.FlushesCompleted)
}

// NoOpStatsCollector discards all metrics. It is the default collector
// when none is specified.
type NoOpStatsCollector struct{}

// RecordEnqueue implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordEnqueue(coalesced bool) {}

// RecordFlushStart implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordFlushStart(size int) {}

// RecordFlushComplete implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordFlushComplete(size int, duration time.Duration) {}

// RecordResolved implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordResolved() {}

// RecordCanceled implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordCanceled(aborted bool) {}

// RecordProcessorError implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordProcessorError() {}

// RecordResolverError implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordResolverError() {}

// GetStats implements the StatsCollector interface.
func (n *NoOpStatsCollector) GetStats() Stats {
	return Stats{}
}

// BasicStatsCollector is a thread-safe in-memory StatsCollector.
type BasicStatsCollector struct {
	mu    sync.RWMutex
	stats Stats

	// Atomic counters for lock-free updates.
	requests         uint64
	coalesced        uint64
	flushes          uint64
	flushesCompleted uint64
	resolved         uint64
	canceled         uint64
	aborted          uint64
	processorErrors  uint64
	resolverErrors   uint64
}

// NewBasicStatsCollector creates a BasicStatsCollector.
func NewBasicStatsCollector() *BasicStatsCollector {
	now := time.Now()
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      now,
			LastUpdateTime: now,
			MinFlushTime:   time.Duration(1<<63 - 1),
		},
	}
}

// RecordEnqueue implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordEnqueue(coalesced bool) {
	atomic.AddUint64(&b.requests, 1)
	if coalesced {
		atomic.AddUint64(&b.coalesced, 1)
	}
}

// RecordFlushStart implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordFlushStart(size int) {
	atomic.AddUint64(&b.flushes, 1)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	if size < b.stats.MinBatchSize || b.stats.MinBatchSize == 0 {
		b.stats.MinBatchSize = size
	}
	if size > b.stats.MaxBatchSize {
		b.stats.MaxBatchSize = size
	}
}

// RecordFlushComplete implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordFlushComplete(size int, duration time.Duration) {
	atomic.AddUint64(&b.flushesCompleted, 1)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	b.stats.TotalFlushTime += duration
	if duration < b.stats.MinFlushTime {
		b.stats.MinFlushTime = duration
	}
	if duration > b.stats.MaxFlushTime {
		b.stats.MaxFlushTime = duration
	}
}

// RecordResolved implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordResolved() {
	atomic.AddUint64(&b.resolved, 1)
}

// RecordCanceled implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordCanceled(aborted bool) {
	if aborted {
		atomic.AddUint64(&b.aborted, 1)
	} else {
		atomic.AddUint64(&b.canceled, 1)
	}
}

// RecordProcessorError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordProcessorError() {
	atomic.AddUint64(&b.processorErrors, 1)
}

// RecordResolverError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordResolverError() {
	atomic.AddUint64(&b.resolverErrors, 1)
}

// GetStats implements the StatsCollector interface. It returns a
// snapshot of the current statistics.
func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.Requests = atomic.LoadUint64(&b.requests)
	stats.Coalesced = atomic.LoadUint64(&b.coalesced)
	stats.Flushes = atomic.LoadUint64(&b.flushes)
	stats.FlushesCompleted = atomic.LoadUint64(&b.flushesCompleted)
	stats.Resolved = atomic.LoadUint64(&b.resolved)
	stats.Canceled = atomic.LoadUint64(&b.canceled)
	stats.Aborted = atomic.LoadUint64(&b.aborted)
	stats.ProcessorErrors = atomic.LoadUint64(&b.processorErrors)
	stats.ResolverErrors = atomic.LoadUint64(&b.resolverErrors)

	if stats.FlushesCompleted == 0 {
		stats.MinFlushTime = 0
	}
	return stats
}

package coalesce

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the accumulation window used when no Scheduler is
// configured.
const DefaultWindow = 10 * time.Millisecond

// Processor performs the physical batch operation. It is invoked at
// most once per flush with a non-empty list of deduplicated items, in
// submission order, and returns the combined response for the whole
// batch. A Processor failure is batch-wide: every live handle in the
// flush receives it.
type Processor[K comparable, P, C any] interface {
	ProcessBatch(ctx context.Context, items []Item[K, P]) (C, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc[K comparable, P, C any] func(ctx context.Context, items []Item[K, P]) (C, error)

// ProcessBatch implements the Processor interface.
func (f ProcessorFunc[K, P, C]) ProcessBatch(ctx context.Context, items []Item[K, P]) (C, error) {
	return f(ctx, items)
}

// Resolver extracts one item's result from the combined response. It is
// invoked once per item after a successful flush and must be pure and
// fast. A Resolver failure affects only the handles under that item.
type Resolver[K comparable, P, C, V any] interface {
	Resolve(combined C, item Item[K, P]) (V, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc[K comparable, P, C, V any] func(combined C, item Item[K, P]) (V, error)

// Resolve implements the Resolver interface.
func (f ResolverFunc[K, P, C, V]) Resolve(combined C, item Item[K, P]) (V, error) {
	return f(combined, item)
}

// Scheduler decides how long the Batcher keeps accumulating before it
// flushes. It is consulted on every submission with the time of the
// first and most recent submission in the current window and the number
// of distinct pending keys, and returns the delay until the flush.
// Negative delays are treated as zero. Schedulers must be pure, fast
// and non-blocking; reference implementations live in the scheduler
// package.
type Scheduler interface {
	Delay(windowStart, windowLast time.Time, pending int) time.Duration
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(windowStart, windowLast time.Time, pending int) time.Duration

// Delay implements the Scheduler interface.
func (f SchedulerFunc) Delay(windowStart, windowLast time.Time, pending int) time.Duration {
	return f(windowStart, windowLast, pending)
}

// entry is one key's position in the pending batch: the deduplicated
// item plus every handle submitted for the key, in submission order.
type entry[K comparable, P any, V any] struct {
	item    Item[K, P]
	handles []*Handle[K, V]
}

// Batcher accumulates requests keyed by identity and flushes them as a
// single batch when its Scheduler says so. Create one with New and
// configure it with the With methods before the first submission.
//
// Type parameters: K is the key type, P the per-request payload, C the
// combined response produced by the Processor, and V the per-request
// result extracted by the Resolver.
type Batcher[K comparable, P, C, V any] struct {
	proc   Processor[K, P, C]
	res    Resolver[K, P, C, V]
	sched  Scheduler
	logger Logger
	stats  StatsCollector
	ctx    context.Context

	mu          sync.Mutex
	started     bool
	entries     map[Key[K]]*entry[K, P, V]
	order       []Key[K]
	windowStart time.Time
	windowLast  time.Time
	timer       *time.Timer
	timerGen    uint64
}

// New creates a Batcher around the given Processor and Resolver. Both
// are required; New panics when either is nil. The default scheduler
// flushes DefaultWindow after the first submission of a window.
func New[K comparable, P, C, V any](proc Processor[K, P, C], res Resolver[K, P, C, V]) *Batcher[K, P, C, V] {
	if proc == nil {
		panic("coalesce: processor cannot be nil")
	}
	if res == nil {
		panic("coalesce: resolver cannot be nil")
	}
	return &Batcher[K, P, C, V]{
		proc: proc,
		res:  res,
		sched: SchedulerFunc(func(windowStart, _ time.Time, _ int) time.Duration {
			return DefaultWindow - time.Since(windowStart)
		}),
		logger:  &NoOpLogger{},
		stats:   &NoOpStatsCollector{},
		ctx:     context.Background(),
		entries: make(map[Key[K]]*entry[K, P, V]),
	}
}

// WithScheduler sets the scheduling policy. Panics if called after a
// request has been submitted, to prevent data races and confusion.
func (b *Batcher[K, P, C, V]) WithScheduler(s Scheduler) *Batcher[K, P, C, V] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		panic("coalesce: WithScheduler cannot be called after requests have been submitted")
	}
	if s != nil {
		b.sched = s
	}
	return b
}

// WithLogger sets a custom logger. If not set, no logging occurs.
// Panics if called after a request has been submitted.
func (b *Batcher[K, P, C, V]) WithLogger(logger Logger) *Batcher[K, P, C, V] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		panic("coalesce: WithLogger cannot be called after requests have been submitted")
	}
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithStats sets a custom stats collector. If not set, no statistics
// are collected. Panics if called after a request has been submitted.
func (b *Batcher[K, P, C, V]) WithStats(stats StatsCollector) *Batcher[K, P, C, V] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		panic("coalesce: WithStats cannot be called after requests have been submitted")
	}
	if stats != nil {
		b.stats = stats
	}
	return b
}

// WithContext sets the context passed to the Processor on every flush.
// It is unrelated to the per-request abort contexts accepted by the
// submission methods. Panics if called after a request has been
// submitted.
func (b *Batcher[K, P, C, V]) WithContext(ctx context.Context) *Batcher[K, P, C, V] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		panic("coalesce: WithContext cannot be called after requests have been submitted")
	}
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

// Get submits a bare-key request with a zero payload. ctx is an
// optional abort signal; pass context.Background() when none is needed.
func (b *Batcher[K, P, C, V]) Get(ctx context.Context, key K) *Handle[K, V] {
	var zero P
	return b.enqueue(ctx, KeyOf(key), zero)
}

// Submit submits a request under an explicit key. If the key is already
// pending, the new handle joins the existing item and the item's
// payload is left as it was.
func (b *Batcher[K, P, C, V]) Submit(ctx context.Context, key K, payload P) *Handle[K, V] {
	return b.enqueue(ctx, KeyOf(key), payload)
}

// SubmitAuto submits a request under a generated key, unique for the
// life of the process and distinct from every explicit key. Generated
// keys are never coalesced with each other.
func (b *Batcher[K, P, C, V]) SubmitAuto(ctx context.Context, payload P) *Handle[K, V] {
	return b.enqueue(ctx, GeneratedKey[K](), payload)
}

func (b *Batcher[K, P, C, V]) enqueue(ctx context.Context, key Key[K], payload P) *Handle[K, V] {
	h := &Handle[K, V]{key: key, done: make(chan struct{})}
	h.onCancel = func(reason error, abort bool) {
		b.cancelHandle(h, reason, abort)
	}

	b.mu.Lock()
	b.started = true
	coalesced := false
	if e, ok := b.entries[key]; ok {
		e.handles = append(e.handles, h)
		coalesced = true
	} else {
		b.entries[key] = &entry[K, P, V]{
			item:    Item[K, P]{Key: key, Payload: payload},
			handles: []*Handle[K, V]{h},
		}
		b.order = append(b.order, key)
	}

	now := time.Now()
	if b.windowStart.IsZero() {
		b.windowStart = now
	}
	b.windowLast = now

	delay := b.sched.Delay(b.windowStart, b.windowLast, len(b.entries))
	if delay < 0 {
		delay = 0
	}
	b.armLocked(delay)
	b.mu.Unlock()

	b.stats.RecordEnqueue(coalesced)
	b.logger.Debug("enqueued request %s (coalesced=%t)", key, coalesced)

	if ctx != nil && ctx.Done() != nil {
		if ctx.Err() != nil {
			// The abort signal fired before submission; settle before
			// returning so the caller never observes a pending handle.
			b.cancelHandle(h, context.Cause(ctx), true)
		} else {
			go b.watchAbort(ctx, h)
		}
	}
	return h
}

// watchAbort aborts the handle when ctx fires. It detaches as soon as
// the handle settles, so no observer outlives its request.
func (b *Batcher[K, P, C, V]) watchAbort(ctx context.Context, h *Handle[K, V]) {
	select {
	case <-ctx.Done():
		b.cancelHandle(h, context.Cause(ctx), true)
	case <-h.done:
	}
}

// Pending returns the number of distinct keys waiting in the current
// batch.
func (b *Batcher[K, P, C, V]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Flush dispatches the pending batch immediately, without waiting for
// the scheduler's delay. It returns once the batch has been processed
// and every affected handle settled. A Flush with nothing pending is a
// no-op.
func (b *Batcher[K, P, C, V]) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
	gen := b.timerGen
	b.mu.Unlock()

	b.flush(gen)
}

// Cancel cancels every handle pending under key and removes the key
// from the batch, so it never reaches the Processor. It is a no-op when
// the key is not pending.
func (b *Batcher[K, P, C, V]) Cancel(key K) {
	k := KeyOf(key)

	b.mu.Lock()
	e, ok := b.entries[k]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.entries, k)
	b.removeOrderLocked(k)
	if len(b.entries) == 0 {
		b.resetWindowLocked()
	}
	b.mu.Unlock()

	b.settleCanceled(e.handles)
}

// CancelAll cancels every pending handle across all keys and leaves the
// Batcher empty and timer-free, so the next submission starts a fresh
// window.
func (b *Batcher[K, P, C, V]) CancelAll() {
	b.mu.Lock()
	snapshot := b.snapshotLocked()
	b.resetWindowLocked()
	b.mu.Unlock()

	for _, e := range snapshot {
		b.settleCanceled(e.handles)
	}
}

func (b *Batcher[K, P, C, V]) settleCanceled(handles []*Handle[K, V]) {
	var zero V
	for _, h := range handles {
		if h.settle(zero, &CancelError{Reason: ErrCanceled}) {
			b.stats.RecordCanceled(false)
			b.logger.Debug("request %s canceled", h.key)
		}
	}
}

// cancelHandle withdraws a single handle. Removing the last handle of a
// key drops the key; dropping the last key resets the window state.
func (b *Batcher[K, P, C, V]) cancelHandle(h *Handle[K, V], reason error, abort bool) {
	b.mu.Lock()
	if e, ok := b.entries[h.key]; ok {
		for i, other := range e.handles {
			if other == h {
				e.handles = append(e.handles[:i], e.handles[i+1:]...)
				break
			}
		}
		if len(e.handles) == 0 {
			delete(b.entries, h.key)
			b.removeOrderLocked(h.key)
			if len(b.entries) == 0 {
				b.resetWindowLocked()
			}
		}
	}
	b.mu.Unlock()

	var err error
	if abort {
		err = &AbortError{Reason: reason}
	} else {
		if reason == nil {
			reason = ErrCanceled
		}
		err = &CancelError{Reason: reason}
	}

	var zero V
	if h.settle(zero, err) {
		b.stats.RecordCanceled(abort)
		b.logger.Debug("request %s canceled (abort=%t)", h.key, abort)
	}
}

// armLocked (re)arms the single flush timer. The generation counter
// supersedes any previously armed timer, including one that has already
// fired but not yet acquired the lock.
func (b *Batcher[K, P, C, V]) armLocked(delay time.Duration) {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timerGen++
	gen := b.timerGen
	b.timer = time.AfterFunc(delay, func() {
		b.flush(gen)
	})
}

// resetWindowLocked clears the window timestamps and disarms the timer.
// Called whenever the pending map becomes empty.
func (b *Batcher[K, P, C, V]) resetWindowLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
	b.windowStart = time.Time{}
	b.windowLast = time.Time{}
}

// snapshotLocked returns the pending entries in submission order and
// clears the pending state.
func (b *Batcher[K, P, C, V]) snapshotLocked() []*entry[K, P, V] {
	snapshot := make([]*entry[K, P, V], 0, len(b.order))
	for _, key := range b.order {
		if e, ok := b.entries[key]; ok {
			snapshot = append(snapshot, e)
		}
	}
	b.entries = make(map[Key[K]]*entry[K, P, V])
	b.order = nil
	return snapshot
}

// flush snapshots and clears the pending state, then dispatches the
// batch. The snapshot-then-clear ordering is the critical invariant:
// submissions arriving while the Processor runs start a fresh batch and
// can never join or block on the in-flight one.
func (b *Batcher[K, P, C, V]) flush(gen uint64) {
	b.mu.Lock()
	if gen != b.timerGen {
		// A later submission rearmed the timer after this one fired.
		b.mu.Unlock()
		return
	}
	snapshot := b.snapshotLocked()
	b.resetWindowLocked()
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	items := make([]Item[K, P], len(snapshot))
	for i, e := range snapshot {
		items[i] = e.item
	}

	b.logger.Debug("flushing batch of %d item(s)", len(items))
	b.stats.RecordFlushStart(len(items))
	start := time.Now()

	combined, err := b.proc.ProcessBatch(b.ctx, items)
	if err != nil {
		b.logger.Error("batch of %d item(s) failed: %v", len(items), err)
		b.stats.RecordProcessorError()
		perr := &ProcessorError{Err: err}
		var zero V
		for _, e := range snapshot {
			for _, h := range e.handles {
				h.settle(zero, perr)
			}
		}
		return
	}

	for _, e := range snapshot {
		if allSettled(e.handles) {
			// Every caller canceled after the snapshot was taken; the
			// item's share of the combined response is discarded.
			continue
		}

		value, rerr := b.res.Resolve(combined, e.item)
		if rerr != nil {
			b.logger.Warn("resolution failed for %s: %v", e.item.Key, rerr)
			b.stats.RecordResolverError()
			var zero V
			rsErr := &ResolverError{Key: e.item.Key.String(), Err: rerr}
			for _, h := range e.handles {
				h.settle(zero, rsErr)
			}
			continue
		}

		for _, h := range e.handles {
			if h.settle(value, nil) {
				b.stats.RecordResolved()
			}
		}
	}

	b.stats.RecordFlushComplete(len(items), time.Since(start))
	b.logger.Info("batch of %d item(s) complete in %v", len(items), time.Since(start))
}

func (b *Batcher[K, P, C, V]) removeOrderLocked(key Key[K]) {
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			return
		}
	}
}

func allSettled[K comparable, V any](handles []*Handle[K, V]) bool {
	for _, h := range handles {
		if !h.Settled() {
			return false
		}
	}
	return true
}

package scheduler

import "time"

// Window flushes a fixed span after the first submission of a window.
// Submissions arriving mid-window join the pending batch without
// extending the deadline: a request at t0 and another at t0+Span/2
// flush together at t0+Span.
type Window struct {
	// Span is the window length, measured from the first submission.
	Span time.Duration

	// MaxItems, if positive, flushes immediately once the batch holds
	// that many distinct keys, regardless of elapsed time.
	MaxItems int
}

// Delay implements the coalesce.Scheduler interface.
func (w Window) Delay(windowStart, _ time.Time, pending int) time.Duration {
	if w.MaxItems > 0 && pending >= w.MaxItems {
		return 0
	}
	delay := w.Span - time.Since(windowStart)
	if delay < 0 {
		return 0
	}
	return delay
}

package scheduler

import "time"

// Debounce postpones the flush while submissions keep arriving: each
// one restarts a Quiet countdown, so the batch flushes only after Quiet
// of silence. MaxWait bounds the postponement; once it has elapsed
// since the first submission of the window, the batch flushes no matter
// how active it still is.
type Debounce struct {
	// Quiet is the silence required after the most recent submission.
	Quiet time.Duration

	// MaxWait is the longest a batch may wait, measured from the first
	// submission of the window.
	MaxWait time.Duration

	// MaxItems, if positive, flushes immediately once the batch holds
	// that many distinct keys, regardless of elapsed time.
	MaxItems int
}

// Delay implements the coalesce.Scheduler interface. It returns
// whichever bound binds first: the remaining quiet time or the
// remaining window allowance.
func (d Debounce) Delay(windowStart, windowLast time.Time, pending int) time.Duration {
	if d.MaxItems > 0 && pending >= d.MaxItems {
		return 0
	}
	delay := d.Quiet - time.Since(windowLast)
	if limit := d.MaxWait - time.Since(windowStart); limit < delay {
		delay = limit
	}
	if delay < 0 {
		return 0
	}
	return delay
}

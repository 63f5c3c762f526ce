package scheduler

import "time"

// Immediate flushes as soon as the scheduler runs. Because the flush
// still happens asynchronously, submissions made before the timer
// goroutine runs may share the batch; there is no accumulation beyond
// that. Useful in tests and for processors with no amortization
// benefit.
type Immediate struct{}

// Delay implements the coalesce.Scheduler interface.
func (Immediate) Delay(_, _ time.Time, _ int) time.Duration {
	return 0
}

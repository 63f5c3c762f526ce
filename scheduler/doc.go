// Package scheduler contains reference implementations of the
// coalesce.Scheduler interface:
//
// - Window: flushes a fixed span after the first submission
// - Debounce: flushes after a quiet period, bounded by a maximum wait
// - Immediate: flushes as soon as the scheduler runs
//
// Both Window and Debounce support an optional MaxItems that flushes
// early once the batch holds that many distinct keys.
//
// Basic usage:
//
//	b := coalesce.New[string, struct{}, map[string]string, string](proc, res).
//		WithScheduler(scheduler.Debounce{
//			Quiet:   5 * time.Millisecond,
//			MaxWait: 50 * time.Millisecond,
//		})
package scheduler

package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// within asserts that got is in [want-tolerance, want+tolerance],
// absorbing the time.Since jitter between building the inputs and
// computing the delay.
func within(t *testing.T, want, got time.Duration) {
	t.Helper()
	const tolerance = 5 * time.Millisecond
	assert.InDelta(t, float64(want), float64(got), float64(tolerance))
}

func TestWindow_Delay(t *testing.T) {
	now := time.Now()
	w := Window{Span: 50 * time.Millisecond}

	t.Run("full span at window start", func(t *testing.T) {
		within(t, 50*time.Millisecond, w.Delay(now, now, 1))
	})

	t.Run("remaining span mid-window", func(t *testing.T) {
		start := now.Add(-20 * time.Millisecond)
		within(t, 30*time.Millisecond, w.Delay(start, now, 3))
	})

	t.Run("late submissions do not extend the deadline", func(t *testing.T) {
		start := now.Add(-40 * time.Millisecond)
		last := now
		within(t, 10*time.Millisecond, w.Delay(start, last, 5))
	})

	t.Run("elapsed window clamps to zero", func(t *testing.T) {
		start := now.Add(-time.Second)
		assert.Equal(t, time.Duration(0), w.Delay(start, now, 1))
	})

	t.Run("max items flushes immediately", func(t *testing.T) {
		sized := Window{Span: time.Hour, MaxItems: 10}
		assert.Equal(t, time.Duration(0), sized.Delay(now, now, 10))
		assert.NotEqual(t, time.Duration(0), sized.Delay(now, now, 9))
	})
}

func TestDebounce_Delay(t *testing.T) {
	now := time.Now()
	d := Debounce{Quiet: 30 * time.Millisecond, MaxWait: 100 * time.Millisecond}

	t.Run("quiet gap binds while window is young", func(t *testing.T) {
		start := now.Add(-10 * time.Millisecond)
		within(t, 30*time.Millisecond, d.Delay(start, now, 1))
	})

	t.Run("each submission restarts the quiet countdown", func(t *testing.T) {
		start := now.Add(-50 * time.Millisecond)
		last := now.Add(-5 * time.Millisecond)
		within(t, 25*time.Millisecond, d.Delay(start, last, 4))
	})

	t.Run("max wait binds near the window limit", func(t *testing.T) {
		start := now.Add(-90 * time.Millisecond)
		within(t, 10*time.Millisecond, d.Delay(start, now, 4))
	})

	t.Run("exhausted window clamps to zero", func(t *testing.T) {
		start := now.Add(-200 * time.Millisecond)
		assert.Equal(t, time.Duration(0), d.Delay(start, now, 1))
	})

	t.Run("max items flushes immediately", func(t *testing.T) {
		sized := Debounce{Quiet: time.Hour, MaxWait: time.Hour, MaxItems: 3}
		assert.Equal(t, time.Duration(0), sized.Delay(now, now, 3))
	})
}

func TestImmediate_Delay(t *testing.T) {
	now := time.Now()
	assert.Equal(t, time.Duration(0), Immediate{}.Delay(now, now, 100))
}

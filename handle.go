package coalesce

import "sync"

// Handle is the caller-facing token for one submitted request. It is
// settled exactly once: with a resolved value, a ProcessorError or
// ResolverError from the flush, or a CancelError/AbortError. Settling
// an already-settled handle is a no-op.
type Handle[K comparable, V any] struct {
	key      Key[K]
	done     chan struct{}
	once     sync.Once
	value    V
	err      error
	onCancel func(reason error, abort bool)
}

// Key returns the identity the request was submitted under. For
// requests submitted with SubmitAuto this is a generated key.
func (h *Handle[K, V]) Key() Key[K] {
	return h.key
}

// Done returns a channel that is closed when the handle settles.
//
// Waiting with a timeout:
//
//	select {
//	case <-h.Done():
//		value, err := h.Result()
//		...
//	case <-time.After(time.Second):
//		h.Cancel(nil)
//	}
func (h *Handle[K, V]) Done() <-chan struct{} {
	return h.done
}

// Result blocks until the handle settles and returns its value or
// failure. After the first return it always reports the same outcome.
func (h *Handle[K, V]) Result() (V, error) {
	<-h.done
	return h.value, h.err
}

// Settled reports whether the handle has already been settled.
func (h *Handle[K, V]) Settled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Cancel settles the handle with a CancelError and withdraws it from
// the pending batch. Sibling handles sharing the same key are not
// affected; if this was the key's last handle, the key is dropped from
// the batch entirely. A nil reason defaults to ErrCanceled. Cancel is
// idempotent, and has no effect on a handle that already settled.
//
// If the batch has already been dispatched, the handle still settles
// as cancelled, but the physical operation cannot be retracted.
func (h *Handle[K, V]) Cancel(reason error) {
	h.onCancel(reason, false)
}

// settle records the outcome and releases waiters. It reports whether
// this call was the one that settled the handle.
func (h *Handle[K, V]) settle(value V, err error) bool {
	settled := false
	h.once.Do(func() {
		h.value = value
		h.err = err
		close(h.done)
		settled = true
	})
	return settled
}

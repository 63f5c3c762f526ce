package coalesce

import (
	"errors"
	"fmt"
)

// ErrCanceled is the default reason attached to a CancelError when the
// caller gives none.
var ErrCanceled = errors.New("request canceled")

// CancelError settles a handle that was cancelled by its owner, by
// Batcher.Cancel, or by Batcher.CancelAll.
type CancelError struct {
	Reason error
}

func (e *CancelError) Error() string {
	return fmt.Sprintf("coalesce: canceled: %v", e.Reason)
}

func (e *CancelError) Unwrap() error {
	return e.Reason
}

// AbortError settles a handle whose abort context fired before the
// handle was resolved. Reason carries the context's cancellation cause.
// It is distinct from CancelError so callers can tell an external abort
// apart from an explicit cancel.
type AbortError struct {
	Reason error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("coalesce: aborted: %v", e.Reason)
}

func (e *AbortError) Unwrap() error {
	return e.Reason
}

// ProcessorError is returned when the batch-processing function fails.
// Every live handle in the failed flush receives the same ProcessorError
// wrapping the raw failure.
type ProcessorError struct {
	Err error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("coalesce: processor error: %v", e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// ResolverError is returned when the resolution policy fails for one
// item. It affects only the handles sharing that item's key; sibling
// items in the same flush resolve normally.
type ResolverError struct {
	Key string
	Err error
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("coalesce: resolver error for key %s: %v", e.Key, e.Err)
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}

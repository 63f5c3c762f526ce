// Package coalesce groups many independent requests into fewer batch
// operations and fans the combined result back out to each caller.
//
// The main type is Batcher, created with New from two caller-supplied
// parts: a Processor that performs one physical operation for a whole
// batch of deduplicated items, and a Resolver that extracts a single
// caller's result from the combined response. A pluggable Scheduler
// decides how long the Batcher accumulates requests before flushing;
// reference schedulers live in the scheduler package and reference
// resolvers in the resolver package.
//
// Requests submitted with the same key before a flush are coalesced:
// each caller gets its own independently cancellable Handle, but the
// Processor sees exactly one item per distinct key, carrying the first
// payload submitted for that key. When the batch flushes, the Resolver
// runs once per item and every handle sharing that item receives the
// same resolved value.
//
// A minimal lookup batcher:
//
//	b := coalesce.New[string, struct{}, map[string]User, User](
//		coalesce.ProcessorFunc[string, struct{}, map[string]User](fetchUsers),
//		resolver.KeyLookup[string, struct{}, User]{},
//	)
//
//	h := b.Get(ctx, "user-1")
//	user, err := h.Result()
//
// Handles can be cancelled individually with Handle.Cancel, per key with
// Batcher.Cancel, or all at once with Batcher.CancelAll. A context passed
// at submission acts as an abort signal: when it fires before the batch
// is dispatched, the handle settles with an AbortError.
//
// All Batcher methods are safe for concurrent use.
package coalesce

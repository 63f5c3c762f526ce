package resolver

import "coalesce"

// Broadcast hands the combined response itself to every request in the
// batch. It suits fire-and-forget processors whose only per-request
// outcome is the success or failure of the batch operation, and
// processors whose combined response is already the shared answer.
type Broadcast[K comparable, P, V any] struct{}

// Resolve implements the coalesce.Resolver interface.
func (Broadcast[K, P, V]) Resolve(combined V, _ coalesce.Item[K, P]) (V, error) {
	return combined, nil
}

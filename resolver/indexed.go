package resolver

import (
	"fmt"

	"coalesce"
)

// Index resolves from a combined response that is an ordered slice,
// using the integer request key as the position.
type Index[P, V any] struct{}

// Resolve implements the coalesce.Resolver interface.
func (Index[P, V]) Resolve(combined []V, item coalesce.Item[int, P]) (V, error) {
	var zero V
	pos, ok := item.Key.Value()
	if !ok {
		return zero, ErrGeneratedKey
	}
	if pos < 0 || pos >= len(combined) {
		return zero, fmt.Errorf("%w: index %d out of %d", ErrNotFound, pos, len(combined))
	}
	return combined[pos], nil
}

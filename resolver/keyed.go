package resolver

import (
	"fmt"

	"coalesce"
)

// KeyLookup resolves from a combined response that is a map keyed by
// request key.
type KeyLookup[K comparable, P, V any] struct{}

// Resolve implements the coalesce.Resolver interface.
func (KeyLookup[K, P, V]) Resolve(combined map[K]V, item coalesce.Item[K, P]) (V, error) {
	var zero V
	key, ok := item.Key.Value()
	if !ok {
		return zero, ErrGeneratedKey
	}
	value, ok := combined[key]
	if !ok {
		return zero, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	return value, nil
}

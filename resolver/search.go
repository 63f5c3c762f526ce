package resolver

import (
	"errors"
	"fmt"

	"coalesce"
)

// Search resolves from a combined response that is an ordered slice of
// records, scanning for the first record whose extracted key equals the
// request key.
type Search[K comparable, P, V any] struct {
	// Key extracts the matching field from a record.
	Key func(record V) K
}

// Resolve implements the coalesce.Resolver interface.
func (s Search[K, P, V]) Resolve(combined []V, item coalesce.Item[K, P]) (V, error) {
	var zero V
	if s.Key == nil {
		return zero, errors.New("resolver: Search.Key function is nil")
	}
	key, ok := item.Key.Value()
	if !ok {
		return zero, ErrGeneratedKey
	}
	for _, record := range combined {
		if s.Key(record) == key {
			return record, nil
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrNotFound, key)
}

// Package resolver contains reference implementations of the
// coalesce.Resolver interface for common combined-response shapes:
//
// - KeyLookup: the combined response is a map keyed by request key
// - Index: the combined response is a slice, indexed by integer key
// - Search: the combined response is a slice of records, scanned for
//   the first record whose extracted key matches
// - Broadcast: the combined response itself is every request's result
//
// All of them fail with ErrNotFound when the combined response holds
// nothing for a key, and with ErrGeneratedKey when given a request that
// was submitted without an explicit key.
//
// Basic usage of KeyLookup:
//
//	r := resolver.KeyLookup[string, struct{}, User]{}
//	user, err := r.Resolve(map[string]User{"1": alice}, coalesce.Item[string, struct{}]{
//		Key: coalesce.KeyOf("1"),
//	})
package resolver

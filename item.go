package coalesce

// Item is the deduplicated unit for one key within a batch. However many
// handles share the key, the Processor receives exactly one Item for it.
// Payload is the first payload submitted for the key; later submissions
// under the same key do not replace it.
type Item[K comparable, P any] struct {
	Key     Key[K]
	Payload P
}

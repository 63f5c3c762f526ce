package resolver

import "errors"

// ErrNotFound is returned when the combined response holds no result
// for a request's key.
var ErrNotFound = errors.New("resolver: no result for key")

// ErrGeneratedKey is returned when a resolver that needs an explicit
// key value is given a request submitted under a generated key.
var ErrGeneratedKey = errors.New("resolver: key has no explicit value")

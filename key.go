package coalesce

import (
	"fmt"

	"github.com/google/uuid"
)

// Key identifies one logical request within a Batcher. It is either an
// explicit caller-supplied value, created with KeyOf, or a generated
// token minted by Batcher.SubmitAuto. The two forms occupy disjoint
// spaces, so a generated key can never collide with any explicit value.
//
// Key is comparable and usable as a map key.
type Key[K comparable] struct {
	value K
	token string
}

// KeyOf returns the explicit Key for value.
func KeyOf[K comparable](value K) Key[K] {
	return Key[K]{value: value}
}

// GeneratedKey mints a Key that is unique for the life of the process
// and distinct from every explicit key. Batcher.SubmitAuto uses it for
// requests submitted without an identity.
func GeneratedKey[K comparable]() Key[K] {
	return Key[K]{token: uuid.NewString()}
}

// Value returns the explicit key value. The second return is false for
// generated keys, which have no caller-visible value.
func (k Key[K]) Value() (K, bool) {
	if k.token != "" {
		var zero K
		return zero, false
	}
	return k.value, true
}

// Generated reports whether the key was minted by SubmitAuto rather
// than supplied by the caller.
func (k Key[K]) Generated() bool {
	return k.token != ""
}

// String returns a printable form of the key.
func (k Key[K]) String() string {
	if k.token != "" {
		return "generated:" + k.token
	}
	return fmt.Sprint(k.value)
}

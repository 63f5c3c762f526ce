package coalesce

import "errors"

// All waits for every handle to settle and returns their values in
// argument order. Failures are joined into a single error; the value
// slot of a failed handle holds the zero value.
func All[K comparable, V any](handles ...*Handle[K, V]) ([]V, error) {
	values := make([]V, len(handles))
	var errs []error
	for i, h := range handles {
		v, err := h.Result()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[i] = v
	}
	return values, errors.Join(errs...)
}

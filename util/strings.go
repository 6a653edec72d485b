package util

// Coalesce returns the first non-zero value, or the zero value if all are
// zero. Backends use it to fall back from a request's model to their default.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

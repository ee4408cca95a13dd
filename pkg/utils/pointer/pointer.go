package pointer

// Ref returns a pointer to t. Useful for literal values in resource specs.
func Ref[T any](t T) *T {
	return &t
}

// SafeDeref dereferences val, or returns the zero value when val is nil.
func SafeDeref[T any](val *T) T {
	if val == nil {
		return *new(T)
	}
	return *val
}

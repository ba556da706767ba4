package utils

func Ptr[T any](v T) *T {
	return &v
}

// ValueOr returns the pointed-to value, or fallback when the pointer is nil.
func ValueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

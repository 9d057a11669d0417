package util

// Ptr returns a pointer to the given value.
// Used for optional JSON fields such as pinned node positions.
func Ptr[T any](v T) *T {
	return &v
}

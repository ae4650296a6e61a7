package models

// Lookup is the outcome of a natural-key lookup against a repository:
// either Found with the stored record, or NotFound.
type Lookup[T any] struct {
	Record T
	Found  bool
}

// Found wraps a stored record.
func Found[T any](record T) Lookup[T] {
	return Lookup[T]{Record: record, Found: true}
}

// NotFound is the absent outcome. It is not an error.
func NotFound[T any]() Lookup[T] {
	return Lookup[T]{}
}

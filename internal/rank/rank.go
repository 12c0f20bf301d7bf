package rank

import "sort"

// Descending returns a copy of items ordered by value, highest first.
// Items with equal values keep their input order.
func Descending[T any](items []T, value func(T) float64) []T {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		return value(out[i]) > value(out[j])
	})
	return out
}

// Ascending is the counterpart of Descending.
func Ascending[T any](items []T, value func(T) float64) []T {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		return value(out[i]) < value(out[j])
	})
	return out
}

// Top returns the first k items of the descending order. k < 1 means all.
func Top[T any](items []T, k int, value func(T) float64) []T {
	out := Descending(items, value)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

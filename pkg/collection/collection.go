// Package collection has small generic slice helpers used when projecting
// models into DTOs and when tallying order lines.
package collection

// Map applies fn to every element. The result is never nil, so an empty
// input still encodes as a JSON array.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Unique keeps the first occurrence of each value, preserving order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// CountBy tallies how often each value occurs.
func CountBy[T comparable](s []T) map[T]int {
	out := make(map[T]int, len(s))
	for _, v := range s {
		out[v]++
	}
	return out
}

// KeyBy indexes s by fn; later elements win on duplicate keys.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}

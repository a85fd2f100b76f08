// Package sliceutil holds generic slice helpers.
package sliceutil

// Filter maps every element through fn and keeps the first occurrence of each
// included result, in input order.
func Filter[T any, S comparable](ts []T, fn func(T) (s S, include bool)) []S {
	ss := make([]S, 0, len(ts))
	seen := make(map[S]struct{}, len(ts))
	for _, t := range ts {
		s, include := fn(t)
		if !include {
			continue
		}
		if _, found := seen[s]; found {
			continue
		}
		seen[s] = struct{}{}
		ss = append(ss, s)
	}
	return ss
}

// Package collections holds small generic containers shared by the
// analysis packages.
package collections

import (
	"cmp"
	"fmt"
	"slices"
)

// Set is an unordered set backed by a map with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding vs
func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

// Add inserts vs
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Has reports whether v is a member
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// HasAny reports whether any of vs is a member
func (s Set[T]) HasAny(vs ...T) bool {
	return slices.ContainsFunc(vs, s.Has)
}

// Len is the number of members
func (s Set[T]) Len() int {
	return len(s)
}

// Sorted returns the members of s in ascending order
func Sorted[T cmp.Ordered](s Set[T]) []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// String lists the members; order is unspecified
func (s Set[T]) String() string {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return fmt.Sprint(out)
}

package common

import "slices"

// UnknownStr is the string form of enum values outside their known range.
const UnknownStr = "unknown"

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsSingle returns true if the slice has exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}

// IsMultiple returns true if the slice has more than one element.
func IsMultiple[S ~[]E, E any](s S) bool {
	return len(s) > 1
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Last returns the last element of the slice and true, or the zero value and false if empty.
func Last[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[len(s)-1], true
}

// AppendUnique appends each element of items that is not yet present in s.
func AppendUnique[S ~[]E, E comparable](s S, items ...E) S {
	for _, item := range items {
		if !slices.Contains(s, item) {
			s = append(s, item)
		}
	}

	return s
}

// Remove returns s without any element equal to item, and whether one was removed.
func Remove[S ~[]E, E comparable](s S, item E) (S, bool) {
	out := slices.DeleteFunc(slices.Clone(s), func(e E) bool { return e == item })

	return out, len(out) != len(s)
}

// Package search implements the binary and linear search primitives used
// by block-list lookups and dataframe/store range queries: inclusive and
// exclusive at-least/at-most binary search modes, a combinator returning a
// sub-slice, and a grouped-run linear limit used by tail/head truncation.
package search

import "sort"

// RangeSearchType selects which boundary a binary search resolves to when
// the comparator reports equal elements.
type RangeSearchType int

const (
	// AtLeastInclusive finds the leftmost element >= the target.
	AtLeastInclusive RangeSearchType = iota
	// AtLeastExclusive finds the leftmost element > the target.
	AtLeastExclusive
	// AtMostInclusive finds the rightmost element <= the target.
	AtMostInclusive
	// AtMostExclusive finds the rightmost element < the target.
	AtMostExclusive
)

// BinarySearchBy searches data (assumed sorted ascending with respect to
// cmp) for the index satisfying mode, where cmp(x) reports x's ordering
// against an implicit target: negative if x is before it, zero if equal,
// positive if after. It returns ok=false if no element satisfies mode.
func BinarySearchBy[T any](data []T, cmp func(T) int, mode RangeSearchType) (int, bool) {
	n := len(data)
	switch mode {
	case AtLeastInclusive:
		i := sort.Search(n, func(i int) bool { return cmp(data[i]) >= 0 })
		if i == n {
			return 0, false
		}
		return i, true
	case AtLeastExclusive:
		i := sort.Search(n, func(i int) bool { return cmp(data[i]) > 0 })
		if i == n {
			return 0, false
		}
		return i, true
	case AtMostInclusive:
		i := sort.Search(n, func(i int) bool { return cmp(data[i]) > 0 })
		if i == 0 {
			return 0, false
		}
		return i - 1, true
	case AtMostExclusive:
		i := sort.Search(n, func(i int) bool { return cmp(data[i]) >= 0 })
		if i == 0 {
			return 0, false
		}
		return i - 1, true
	default:
		return 0, false
	}
}

// BinarySearchRangeBy returns the contiguous sub-slice of data bounded
// below by AtLeastInclusive(lowerCmp) and above by AtMostExclusive(upperCmp).
// A nil comparator leaves that side unbounded. ok is false if either
// supplied bound fails to find a match, or if the resolved bounds are
// empty/inverted.
func BinarySearchRangeBy[T any](data []T, lowerCmp, upperCmp func(T) int) ([]T, bool) {
	lo := 0
	if lowerCmp != nil {
		i, ok := BinarySearchBy(data, lowerCmp, AtLeastInclusive)
		if !ok {
			return nil, false
		}
		lo = i
	}
	hi := len(data)
	if upperCmp != nil {
		j, ok := BinarySearchBy(data, upperCmp, AtMostExclusive)
		if !ok {
			return nil, false
		}
		hi = j + 1
	}
	if lo >= hi {
		return nil, false
	}
	return data[lo:hi], true
}

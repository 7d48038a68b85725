// Package aggregate groups record streams into ranked results: counts per
// key, metric per key, and the sorting rules every report section shares.
//
// Rankings are plain ordered slices. Sorting is stable, so keys with equal
// values keep the order in which they were first seen. NaN values mark a
// metric that could not be computed and always sort last.
package aggregate

import (
	"cmp"
	"math"
	"slices"
)

// Number is the value type a ranking can hold.
type Number interface {
	~int | ~int64 | ~float64
}

// Entry is one key with its metric.
type Entry[K comparable, V Number] struct {
	Key   K
	Value V
}

// Ranking is an ordered list of entries.
type Ranking[K comparable, V Number] []Entry[K, V]

// Top returns at most the first n entries. n <= 0 yields an empty ranking.
func (r Ranking[K, V]) Top(n int) Ranking[K, V] {
	if n <= 0 {
		return Ranking[K, V]{}
	}
	if n >= len(r) {
		return r
	}
	return r[:n]
}

// Keys returns the keys in ranking order.
func (r Ranking[K, V]) Keys() []K {
	out := make([]K, len(r))
	for i, e := range r {
		out[i] = e.Key
	}
	return out
}

// Values returns the values in ranking order.
func (r Ranking[K, V]) Values() []V {
	out := make([]V, len(r))
	for i, e := range r {
		out[i] = e.Value
	}
	return out
}

func isNaN[V Number](v V) bool {
	f := float64(v)
	return math.IsNaN(f)
}

// compareNaNLast orders a before b by value, with NaN after everything.
func compareNaNLast[V Number](a, b V, desc bool) int {
	an, bn := isNaN(a), isNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	if desc {
		return cmp.Compare(b, a)
	}
	return cmp.Compare(a, b)
}

// SortDesc stably sorts r by value, largest first.
func SortDesc[K comparable, V Number](r Ranking[K, V]) {
	slices.SortStableFunc(r, func(a, b Entry[K, V]) int {
		return compareNaNLast(a.Value, b.Value, true)
	})
}

// SortAsc stably sorts r by value, smallest first.
func SortAsc[K comparable, V Number](r Ranking[K, V]) {
	slices.SortStableFunc(r, func(a, b Entry[K, V]) int {
		return compareNaNLast(a.Value, b.Value, false)
	})
}

// SortByKey stably sorts r by key, smallest first.
func SortByKey[K cmp.Ordered, V Number](r Ranking[K, V]) {
	slices.SortStableFunc(r, func(a, b Entry[K, V]) int {
		return cmp.Compare(a.Key, b.Key)
	})
}

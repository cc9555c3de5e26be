// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package determinism provides the stable total orderings and
// order-independent reduction helper that every other engine package builds
// on. Nothing in this package reads wall-clock time, OS randomness, or map
// iteration order directly; all traversal happens over pre-sorted slices.
package determinism

import (
	"sort"

	"github.com/vmengine/core/internal/ids"
)

// SortUnitIds sorts ids lexicographically in place and returns it.
func SortUnitIds(u []ids.UnitId) []ids.UnitId {
	sort.Slice(u, func(i, j int) bool { return u[i] < u[j] })
	return u
}

// OptionItem is the minimal shape needed to compute canonical option order:
// (order_index, option_id) lexicographic, no other tie-break key.
type OptionItem struct {
	OrderIndex uint16
	OptionId   ids.OptionId
}

// SortOptions sorts items by canonical order in place and returns it.
func SortOptions(items []OptionItem) []OptionItem {
	sort.Slice(items, func(i, j int) bool {
		if items[i].OrderIndex != items[j].OrderIndex {
			return items[i].OrderIndex < items[j].OrderIndex
		}
		return items[i].OptionId < items[j].OptionId
	})
	return items
}

// LessOption reports whether a sorts before b under canonical option order.
func LessOption(a, b OptionItem) bool {
	if a.OrderIndex != b.OrderIndex {
		return a.OrderIndex < b.OrderIndex
	}
	return a.OptionId < b.OptionId
}

// ReduceDeterministic sorts items by the given stable key and left-folds them
// through combine. The result depends only on the multiset of items,
// provided combine is associative; it does not depend on the original order
// or on any concurrent partitioning a caller may have used to produce items.
func ReduceDeterministic[T any, K ~string | ~int | ~uint16 | ~uint32 | ~uint64](
	items []T,
	keyOf func(T) K,
	zero T,
	combine func(acc, item T) T,
) T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return keyOf(sorted[i]) < keyOf(sorted[j]) })

	acc := zero
	for _, item := range sorted {
		acc = combine(acc, item)
	}
	return acc
}

// SortedKeys returns the keys of m in ascending order. Used wherever a map
// must be walked in canonical order (e.g. before folding into a
// ReduceDeterministic combine, or before canonical-JSON emission).
func SortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

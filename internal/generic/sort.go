package generic

import (
	"sort"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

func SortSlice[T constraints.Ordered](arr []T, reverse bool) {
	sort.Slice(arr, func(i, j int) bool {
		return (arr[i] < arr[j]) != reverse
	})
}

// SortedKeys returns the keys of the map in ascending order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	SortSlice(keys, false)

	return keys
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}

	return b
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}

	return b
}

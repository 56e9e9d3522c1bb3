package services

import "throttlelab/internal/core/domain"

// Permute visits every ordering of values using in-place swap backtracking:
// fix a position, swap each remaining candidate into it, recurse, swap back.
// For [A B C] the visit order is ABC ACB BAC BCA CBA CAB.
//
// emit sees the shared buffer and must copy anything it keeps. values holds
// its original order again when Permute returns.
func Permute[T any](values []T, emit func([]T)) {
	permute(values, 0, emit)
}

func permute[T any](values []T, start int, emit func([]T)) {
	if start >= len(values)-1 {
		emit(values)
		return
	}

	for i := start; i < len(values); i++ {
		values[start], values[i] = values[i], values[start]
		permute(values, start+1, emit)
		values[start], values[i] = values[i], values[start]
	}
}

// GeneratePermutations returns the permutation table of base. Duplicate
// values are not collapsed: they yield repeated rows.
func GeneratePermutations(base domain.Permutation) domain.PermutationTable {
	var table domain.PermutationTable

	buf := base
	row := 0
	Permute(buf[:], func(p []domain.BitrateValue) {
		copy(table[row][:], p)
		row++
	})

	return table
}

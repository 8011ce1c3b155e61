package deepfool

import (
	"cmp"
	"slices"
)

// rankClasses returns the indices of the n largest activations in descending order.
// Equal activations keep ascending index order.
func rankClasses(activations []float64, n int) []int {
	idx := make([]int, len(activations))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(activations[b], activations[a])
	})
	return idx[:min(n, len(idx))]
}

// argmax returns the index of the first maximal activation.
func argmax(activations []float64) int {
	best := 0
	for i, v := range activations {
		if v > activations[best] {
			best = i
		}
	}
	return best
}

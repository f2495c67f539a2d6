package regime

import (
	"gonum.org/v1/gonum/floats"

	"github.com/Alias1177/Regimes/internal/calculate"
)

// Extrema flags the positions equal to the minimum and maximum of their
// window. Trailing windows cover [i-window+1, i], leading windows cover
// [i, i+window-1]. Incomplete windows and windows holding a missing value
// flag nothing.
func Extrema(series []float64, window int, future bool) ([]bool, []bool) {
	n := len(series)
	isMin := make([]bool, n)
	isMax := make([]bool, n)
	if window <= 0 {
		return isMin, isMax
	}

	for i, v := range series {
		lo, hi := i-window+1, i+1
		if future {
			lo, hi = i, i+window
		}
		if lo < 0 || hi > n {
			continue
		}

		win := series[lo:hi]
		if calculate.HasNaN(win) {
			continue
		}
		isMin[i] = v == floats.Min(win)
		isMax[i] = v == floats.Max(win)
	}
	return isMin, isMax
}

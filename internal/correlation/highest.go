package correlation

import (
	"math"
	"sort"

	"github.com/Alias1177/Regimes/internal/calculate"
)

// Highest returns, for every column, the column followed by up to n of its
// strongest partners of the given sign whose magnitude lies in [lo, hi].
// Partners are taken in rank order and the search stops at the first one
// of the opposite sign.
func (m *Matrix) Highest(n int, sign Sign, lo, hi float64) ([][]string, error) {
	if n < 1 {
		return nil, calculate.NewConfigError("top", n, "must be positive")
	}
	if err := (Options{Min: lo, Max: hi}).Validate(); err != nil {
		return nil, err
	}

	out := make([][]string, len(m.columns))
	for i, name := range m.columns {
		out[i] = []string{name}

		order := make([]int, 0, len(m.columns)-1)
		for j := range m.columns {
			if j != i {
				order = append(order, j)
			}
		}
		sort.SliceStable(order, func(a, b int) bool {
			return ranksBefore(m.at(i, order[a]), m.at(i, order[b]), sign)
		})

		for _, j := range order[:min(n, len(order))] {
			v := m.at(i, j)
			if (sign == Positive && v < 0) || (sign == Negative && v > 0) {
				break
			}
			if a := math.Abs(v); a >= lo && a <= hi {
				out[i] = append(out[i], m.columns[j])
			}
		}
	}
	return out, nil
}

// ranksBefore orders strongest first for sign, missing values last
func ranksBefore(x, y float64, sign Sign) bool {
	if math.IsNaN(x) {
		return false
	}
	if math.IsNaN(y) {
		return true
	}
	if sign == Negative {
		return x < y
	}
	return x > y
}

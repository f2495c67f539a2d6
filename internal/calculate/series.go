package calculate

import (
	"math"
	"sort"
)

// DropNaN returns the non-missing values of series in their original order
func DropNaN(series []float64) []float64 {
	values := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// CountValid counts the non-missing values of series
func CountValid(series []float64) int {
	n := 0
	for _, v := range series {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// HasNaN reports whether any value of series is missing
func HasNaN(series []float64) bool {
	for _, v := range series {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// NaNs returns a series of n missing values
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Diff returns series[i] - series[i-period]; the first period positions are NaN,
// as is everything when period <= 0.
func Diff(series []float64, period int) []float64 {
	out := NaNs(len(series))
	if period <= 0 {
		return out
	}
	for i := period; i < len(series); i++ {
		out[i] = series[i] - series[i-period]
	}
	return out
}

// PctChange returns the relative change over period positions.
// Missing values propagate, a zero base yields ±Inf.
func PctChange(series []float64, period int) []float64 {
	out := NaNs(len(series))
	if period <= 0 {
		return out
	}
	for i := period; i < len(series); i++ {
		base := series[i-period]
		out[i] = (series[i] - base) / base
	}
	return out
}

// Quantile returns the q-th quantile of the non-missing values using linear
// interpolation between the closest ranks, h = (n-1)*q.
func Quantile(series []float64, q float64) float64 {
	values := DropNaN(series)
	if len(values) == 0 {
		return math.NaN()
	}
	sort.Float64s(values)

	h := float64(len(values)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(values)-1 {
		return values[len(values)-1]
	}
	return values[lo] + (h-float64(lo))*(values[lo+1]-values[lo])
}

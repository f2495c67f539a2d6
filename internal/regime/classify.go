package regime

import (
	"fmt"
	"math"

	"github.com/Alias1177/Regimes/internal/calculate"
)

// Buckets produced by Classify
const (
	StrongUp   = 1.0
	WeakUp     = 0.5
	WeakDown   = -0.5
	StrongDown = -1.0
)

// Classify buckets the percent change over window without any regime memory:
// above rateUp → 1, below -rateDown → -1, otherwise ±0.5 by sign. Positions
// without a change (warm-up, missing values) are 0 when fillNaN is set and
// NaN otherwise.
func Classify(series []float64, window int, rateUp, rateDown float64, fillNaN bool) ([]float64, error) {
	if err := calculate.CheckSeries(series); err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, calculate.NewConfigError("window", window, "must be positive")
	}
	if window > len(series) {
		return nil, calculate.NewConfigError("window", window, fmt.Sprintf("exceeds series length %d", len(series)))
	}
	if !(rateUp >= 0) {
		return nil, calculate.NewConfigError("rate_up", rateUp, "must be >= 0")
	}
	if !(rateDown >= 0) {
		return nil, calculate.NewConfigError("rate_dn", rateDown, "must be >= 0")
	}

	change := calculate.PctChange(series, window)
	out := make([]float64, len(change))
	for i, c := range change {
		switch {
		case math.IsNaN(c):
			out[i] = math.NaN()
			if fillNaN {
				out[i] = 0
			}
		case c > rateUp:
			out[i] = StrongUp
		case c < -rateDown:
			out[i] = StrongDown
		case c < 0:
			out[i] = WeakDown
		default:
			out[i] = WeakUp
		}
	}
	return out, nil
}

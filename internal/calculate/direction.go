package calculate

import "math"

// ForceDirection scales the period-over-period change of series into [-1, 1].
// The change is divided by k standard deviations of all changes; missing
// positions become 0 and anything within ±zeroRate percent snaps to 0.
func ForceDirection(series []float64, period int, k float64, zeroRate float64) ([]float64, error) {
	if period <= 0 {
		return nil, NewConfigError("period", period, "must be positive")
	}
	if zeroRate < 0 {
		return nil, NewConfigError("zero_rate", zeroRate, "must be >= 0")
	}
	if err := CheckSeries(series); err != nil {
		return nil, err
	}

	diff := Diff(series, period)
	_, upper, err := SigmaBand(diff, k)
	if err != nil {
		return nil, err
	}
	mean, _, _ := meanStd(diff)
	threshold := upper - mean

	zeroBound := zeroRate / 100
	direction := make([]float64, len(diff))
	for i, d := range diff {
		v := math.Max(-1, math.Min(1, d/threshold))
		if math.IsNaN(v) || (v >= -zeroBound && v <= zeroBound) {
			v = 0
		}
		direction[i] = v
	}
	return direction, nil
}

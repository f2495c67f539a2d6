package calculate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultSigma is the band multiplier used when none is given
const DefaultSigma = 3.0

// SigmaStats describes how a series is spread around its mean
type SigmaStats struct {
	Max             float64 `json:"max"`
	Min             float64 `json:"min"`
	Mean            float64 `json:"mean"`
	Std             float64 `json:"std"`
	Threshold       float64 `json:"threshold"`
	SigmaLower      float64 `json:"sigma_lower"`
	SigmaUpper      float64 `json:"sigma_upper"`
	SigmaPercent    float64 `json:"sigma_percent"`
	QuantileLower   float64 `json:"quantile_lower"`
	QuantileUpper   float64 `json:"quantile_upper"`
	QuantilePercent float64 `json:"quantile_percent"`
}

// meanStd computes the population mean and standard deviation of the
// non-missing values of series.
func meanStd(series []float64) (float64, float64, error) {
	if err := CheckSeries(series); err != nil {
		return 0, 0, err
	}
	values := DropNaN(series)
	for i, v := range values {
		if math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("%w: infinite value at position %d", ErrInvalidInput, i)
		}
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	return mean, std, nil
}

// SigmaBand returns mean-k*std and mean+k*std of series, ignoring missing values
func SigmaBand(series []float64, k float64) (float64, float64, error) {
	if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, 0, NewConfigError("k", k, "must be a finite value >= 0")
	}

	mean, std, err := meanStd(series)
	if err != nil {
		return 0, 0, err
	}

	threshold := k * std
	return mean - threshold, mean + threshold, nil
}

// CalculateSigmaStats computes the sigma band together with a quantile band
// [quantile, 1-quantile] and the share of points falling inside each of them.
func CalculateSigmaStats(series []float64, k float64, quantile float64) (*SigmaStats, error) {
	if quantile < 0 || quantile > 0.5 || math.IsNaN(quantile) {
		return nil, NewConfigError("quantile", quantile, "must be within [0, 0.5]")
	}

	lower, upper, err := SigmaBand(series, k)
	if err != nil {
		return nil, err
	}
	mean, std, _ := meanStd(series)

	values := DropNaN(series)
	qLower := Quantile(values, quantile)
	qUpper := Quantile(values, 1-quantile)

	return &SigmaStats{
		Max:             floats.Max(values),
		Min:             floats.Min(values),
		Mean:            mean,
		Std:             std,
		Threshold:       k * std,
		SigmaLower:      lower,
		SigmaUpper:      upper,
		SigmaPercent:    percentWithin(series, lower, upper),
		QuantileLower:   qLower,
		QuantileUpper:   qUpper,
		QuantilePercent: percentWithin(series, qLower, qUpper),
	}, nil
}

// percentWithin counts missing values in the denominator but never inside the band
func percentWithin(series []float64, lower, upper float64) float64 {
	inside := 0
	for _, v := range series {
		if v >= lower && v <= upper {
			inside++
		}
	}
	return float64(inside) / float64(len(series)) * 100
}


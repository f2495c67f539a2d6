package calculate

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SMA returns the simple moving average over a trailing window of period.
// Positions whose window is incomplete or contains a missing value are NaN.
func SMA(prices []float64, period int) []float64 {
	out := NaNs(len(prices))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(prices); i++ {
		window := prices[i-period+1 : i+1]
		if HasNaN(window) {
			continue
		}
		out[i] = floats.Sum(window) / float64(period)
	}
	return out
}

// EMA returns the exponential moving average seeded with the SMA of the first
// period prices. Missing prices carry the previous average forward.
func EMA(prices []float64, period int) []float64 {
	out := NaNs(len(prices))
	if period <= 0 {
		return out
	}

	start := firstFullWindow(prices, period)
	if start < 0 {
		return out
	}

	// Multiplier for weighting the EMA
	multiplier := 2.0 / float64(period+1)

	ema := floats.Sum(prices[start-period+1:start+1]) / float64(period)
	out[start] = ema
	for i := start + 1; i < len(prices); i++ {
		if !math.IsNaN(prices[i]) {
			ema = (prices[i]-ema)*multiplier + ema
		}
		out[i] = ema
	}
	return out
}

// RSI returns Wilder's relative strength index. It starts at the first run of
// period+1 non-missing prices; a missing price carries the averages forward.
func RSI(prices []float64, period int) []float64 {
	out := NaNs(len(prices))
	if period <= 0 {
		return out
	}

	start := firstFullWindow(prices, period+1)
	if start < 0 {
		return out
	}

	var gains, losses float64
	for i := start - period + 1; i <= start; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	out[start] = rsiValue(avgGain, avgLoss)

	last := prices[start]
	for i := start + 1; i < len(prices); i++ {
		if math.IsNaN(prices[i]) {
			out[i] = out[i-1]
			continue
		}
		change := prices[i] - last
		last = prices[i]

		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// MACD returns the MACD line, its signal line and the histogram
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) ([]float64, []float64, []float64) {
	fast := EMA(prices, fastPeriod)
	slow := EMA(prices, slowPeriod)

	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = fast[i] - slow[i]
	}

	signal := EMA(line, signalPeriod)
	hist := make([]float64, len(prices))
	for i := range prices {
		hist[i] = line[i] - signal[i]
	}
	return line, signal, hist
}

// BollingerBands returns per-position upper, middle and lower bands over a
// trailing window, using the population standard deviation.
func BollingerBands(prices []float64, period int, stdDev float64) ([]float64, []float64, []float64) {
	upper, middle, lower := NaNs(len(prices)), NaNs(len(prices)), NaNs(len(prices))
	if period <= 0 {
		return upper, middle, lower
	}

	for i := period - 1; i < len(prices); i++ {
		window := prices[i-period+1 : i+1]
		if HasNaN(window) {
			continue
		}
		mean, sd := stat.PopMeanStdDev(window, nil)
		middle[i] = mean
		upper[i] = mean + sd*stdDev
		lower[i] = mean - sd*stdDev
	}
	return upper, middle, lower
}

// Disparity returns (short - long) / short for two moving averages
func Disparity(short, long []float64) []float64 {
	out := NaNs(len(short))
	for i := range short {
		if i < len(long) {
			out[i] = (short[i] - long[i]) / short[i]
		}
	}
	return out
}

// firstFullWindow returns the first index ending a window of period
// non-missing values, or -1 when there is none.
func firstFullWindow(prices []float64, period int) int {
	run := 0
	for i, v := range prices {
		if math.IsNaN(v) {
			run = 0
			continue
		}
		run++
		if run >= period {
			return i
		}
	}
	return -1
}

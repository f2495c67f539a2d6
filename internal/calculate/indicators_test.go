package calculate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, math.NaN(), 6, 7, 8}
	sma := SMA(prices, 3)

	require.Len(t, sma, len(prices))
	assert.True(t, math.IsNaN(sma[0]))
	assert.True(t, math.IsNaN(sma[1]))
	assert.InDelta(t, 2.0, sma[2], 1e-9)
	assert.InDelta(t, 3.0, sma[3], 1e-9)
	assert.True(t, math.IsNaN(sma[4]), "window with a missing value")
	assert.True(t, math.IsNaN(sma[6]))
	assert.InDelta(t, 7.0, sma[7], 1e-9)
}

func TestEMA(t *testing.T) {
	prices := []float64{2, 4, 6, 8, 10}
	ema := EMA(prices, 3)

	assert.True(t, math.IsNaN(ema[1]))
	assert.InDelta(t, 4.0, ema[2], 1e-9)
	assert.InDelta(t, 6.0, ema[3], 1e-9)
	assert.InDelta(t, 8.0, ema[4], 1e-9)

	allNaN := EMA([]float64{1, 2}, 3)
	assert.True(t, math.IsNaN(allNaN[0]))
	assert.True(t, math.IsNaN(allNaN[1]))
}

func TestRSI(t *testing.T) {
	rising := []float64{1, 2, 3, 4, 5, 6}
	rsi := RSI(rising, 3)
	assert.True(t, math.IsNaN(rsi[2]))
	assert.Equal(t, 100.0, rsi[3])
	assert.Equal(t, 100.0, rsi[5])

	alternating := []float64{10, 11, 10, 11, 10}
	rsi = RSI(alternating, 2)
	assert.InDelta(t, 50.0, rsi[2], 1e-9)
}

func TestRSI_MissingPrices(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		prices []float64
		period int
		want   []float64
	}{
		{
			name:   "leading warm-up",
			prices: []float64{nan, 1, 2, 3, 2, 3},
			period: 3,
			want:   []float64{nan, nan, nan, nan, 100 - 100/3.0, 100 - 100/4.5},
		},
		{
			name:   "gap carries forward",
			prices: []float64{1, 2, 3, nan, 2},
			period: 2,
			// the price after the gap is compared with 3
			want: []float64{nan, nan, 100, 100, 50},
		},
		{
			name:   "no full window",
			prices: []float64{1, nan, 2, nan, 3},
			period: 2,
			want:   []float64{nan, nan, nan, nan, nan},
		},
		{
			name:   "non-positive period",
			prices: []float64{1, 2, 3},
			period: 0,
			want:   []float64{nan, nan, nan},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.prices, tt.period)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				if math.IsNaN(w) {
					assert.True(t, math.IsNaN(got[i]), "index %d", i)
					continue
				}
				assert.InDelta(t, w, got[i], 1e-9, "index %d", i)
			}
		})
	}

	long := make([]float64, 20)
	long[0] = nan
	for i := 1; i < len(long); i++ {
		long[i] = float64(i)
	}
	long[5] = 4
	rsi := RSI(long, 3)
	assert.False(t, math.IsNaN(rsi[19]))
}

func TestBollingerBands(t *testing.T) {
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	upper, middle, lower := BollingerBands(prices, 8, 2)

	assert.True(t, math.IsNaN(middle[6]))
	assert.InDelta(t, 5.0, middle[7], 1e-9)
	assert.InDelta(t, 9.0, upper[7], 1e-9)
	assert.InDelta(t, 1.0, lower[7], 1e-9)
}

func TestMACD(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	line, signal, hist := MACD(prices, 3, 6, 3)
	require.Len(t, line, 40)

	// A steady trend settles the fast EMA above the slow one.
	assert.Greater(t, line[39], 0.0)
	assert.InDelta(t, line[39]-signal[39], hist[39], 1e-9)
	assert.True(t, math.IsNaN(line[2]))
	assert.False(t, math.IsNaN(line[5]))
}

func TestBaseIndicators(t *testing.T) {
	closes := make([]float64, 150)
	for i := range closes {
		closes[i] = 50 + math.Sin(float64(i)/5)*10
	}

	columns := BaseIndicators(closes, DefaultIndicatorConfig())
	for _, name := range []string{"ma5", "ma120", "dsp10", "dsp120", "bbu", "bbm", "bbl", "macd", "macds", "macdh", "rsi"} {
		require.Contains(t, columns, name)
		assert.Len(t, columns[name], len(closes), name)
	}
	assert.False(t, math.IsNaN(columns["ma120"][149]))
}

package calculate

import "fmt"

// IndicatorConfig holds the periods used by BaseIndicators
type IndicatorConfig struct {
	MAPeriods        []int
	DisparityPeriods []int
	BBPeriod         int
	BBStdDev         float64
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
	RSIPeriod        int
}

// DefaultIndicatorConfig returns the periods commonly used on daily stock data
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		MAPeriods:        []int{5, 10, 20, 60, 120},
		DisparityPeriods: []int{10, 20, 60, 120},
		BBPeriod:         20,
		BBStdDev:         2,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		RSIPeriod:        15,
	}
}

// BaseIndicators derives the standard indicator columns from closing prices.
// Disparity is measured against the shortest moving average.
func BaseIndicators(closes []float64, cfg IndicatorConfig) map[string][]float64 {
	out := make(map[string][]float64)

	for _, period := range cfg.MAPeriods {
		out[fmt.Sprintf("ma%d", period)] = SMA(closes, period)
	}

	if len(cfg.MAPeriods) > 0 {
		short := SMA(closes, cfg.MAPeriods[0])
		for _, period := range cfg.DisparityPeriods {
			out[fmt.Sprintf("dsp%d", period)] = Disparity(short, SMA(closes, period))
		}
	}

	out["bbu"], out["bbm"], out["bbl"] = BollingerBands(closes, cfg.BBPeriod, cfg.BBStdDev)
	out["macd"], out["macds"], out["macdh"] = MACD(closes, cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod)
	out["rsi"] = RSI(closes, cfg.RSIPeriod)

	return out
}

package models

// CandlesForDays estimates how many candles of interval cover the given
// number of days, with a 10% buffer. Unknown intervals yield 0.
func CandlesForDays(interval string, days int) int {
	candlesPerDay := 0

	switch interval {
	case "1min":
		candlesPerDay = 24 * 60
	case "5min":
		candlesPerDay = 24 * 12
	case "15min":
		candlesPerDay = 24 * 4
	case "30min":
		candlesPerDay = 24 * 2
	case "45min":
		candlesPerDay = 24 * 60 / 45
	case "1h":
		candlesPerDay = 24
	case "2h":
		candlesPerDay = 12
	case "4h":
		candlesPerDay = 6
	case "8h":
		candlesPerDay = 3
	case "1day":
		candlesPerDay = 1
	case "1week", "1month":
		// at least one candle
		candlesPerDay = 1
		span := 7
		if interval == "1month" {
			span = 30
		}
		days = max(days/span, 1)
	}

	return int(float64(candlesPerDay) * float64(days) * 1.1)
}

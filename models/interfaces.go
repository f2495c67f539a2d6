package models

import "context"

type CandleClient interface {
	GetCandles(ctx context.Context) ([]Candle, error)
	GetHistoricalCandles(ctx context.Context, days int) ([]Candle, error)
}

// SeriesSource yields the close series of a symbol, oldest first
type SeriesSource interface {
	Series(ctx context.Context, symbol string) ([]Point, error)
}

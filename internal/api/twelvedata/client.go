package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/Regimes/internal/platform/http"
	"github.com/Alias1177/Regimes/models"
)

const defaultBaseURL = "https://api.twelvedata.com"

var datetimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// Client is the TwelveData API client
type Client struct {
	apiKey      string
	baseURL     string
	interval    string
	candleCount int
	httpClient  *httpClient.Client
	logger      zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	Symbol          string
	Interval        string
	CandleCount     int
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// boundClient adapts Client to models.CandleClient for one symbol
type boundClient struct {
	*Client
	symbol string
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Name:            "twelvedata",
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}
	if options.Interval == "" {
		options.Interval = "1day"
	}
	if options.CandleCount <= 0 {
		options.CandleCount = 500
	}

	return &Client{
		apiKey:      options.APIKey,
		baseURL:     options.BaseURL,
		interval:    options.Interval,
		candleCount: options.CandleCount,
		httpClient:  httpClient.NewClient(httpOpts),
		logger:      log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// ForSymbol returns a models.CandleClient bound to symbol
func (c *Client) ForSymbol(symbol string) models.CandleClient {
	return boundClient{Client: c, symbol: symbol}
}

func (b boundClient) GetCandles(ctx context.Context) ([]models.Candle, error) {
	return b.Client.GetCandles(ctx, b.symbol, b.candleCount)
}

func (b boundClient) GetHistoricalCandles(ctx context.Context, days int) ([]models.Candle, error) {
	return b.Client.GetHistoricalCandles(ctx, b.symbol, days)
}

// GetCandles fetches up to count candles of symbol, oldest first
func (c *Client) GetCandles(ctx context.Context, symbol string, count int) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", c.interval)
	params.Set("outputsize", strconv.Itoa(count))

	c.logger.Debug().
		Str("symbol", symbol).
		Str("interval", c.interval).
		Int("count", count).
		Msg("Fetching candles")

	params.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/time_series?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data models.TwelveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if data.Status == "error" {
		c.logger.Error().Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		return nil, fmt.Errorf("twelve data API error %d: %s", data.Code, data.Message)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, fmt.Errorf("empty data returned for %s", symbol)
	}

	// oldest first
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		candles = append(candles, models.Candle{
			Datetime: v.Datetime,
			Open:     v.Open,
			High:     v.High,
			Low:      v.Low,
			Close:    v.Close,
			Volume:   v.Volume,
		})
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// GetHistoricalCandles fetches enough candles of symbol to cover days
func (c *Client) GetHistoricalCandles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	count := models.CandlesForDays(c.interval, days)
	if count <= 0 {
		return nil, fmt.Errorf("unsupported interval %q", c.interval)
	}
	return c.GetCandles(ctx, symbol, count)
}

// Series implements models.SeriesSource with the close prices of symbol
func (c *Client) Series(ctx context.Context, symbol string) ([]models.Point, error) {
	candles, err := c.GetCandles(ctx, symbol, c.candleCount)
	if err != nil {
		return nil, err
	}
	return Closes(candles)
}

// Closes converts candles to close-price points
func Closes(candles []models.Candle) ([]models.Point, error) {
	points := make([]models.Point, 0, len(candles))
	for _, candle := range candles {
		ts, err := ParseDatetime(candle.Datetime)
		if err != nil {
			return nil, err
		}
		points = append(points, models.Point{Time: ts, Value: candle.Close})
	}
	return points, nil
}

// ParseDatetime parses the datetime of a candle as UTC
func ParseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with rate limiting, retries and a
// circuit breaker
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Breaker    *gobreaker.CircuitBreaker

	maxRetries      int
	maxRetryTimeout time.Duration
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Name            string
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	// BreakerFailures consecutive failed requests open the breaker for BreakerTimeout
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}
	if opts.Name == "" {
		opts.Name = "http"
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout == 0 {
		opts.BreakerTimeout = time.Minute
	}

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    opts.Name,
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// cancellation and rejected requests are not failures of the remote side
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || isClientError(err)
		},
	})

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:         rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		Breaker:         breaker,
		maxRetries:      opts.MaxRetries,
		maxRetryTimeout: opts.MaxRetryTimeout,
	}
}

// DoRequest performs an HTTP request with rate limiting and retries.
// Client errors other than 429 are not retried. While the breaker is open
// requests fail fast with gobreaker.ErrOpenState.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	result, err := c.Breaker.Execute(func() (interface{}, error) {
		return c.retry(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

func (c *Client) retry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	operation := func() error {
		if err := c.Limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var err error
		resp, err = c.HTTPClient.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if statusErr.clientError() {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxRetryTimeout

	var policy backoff.BackOff = strategy
	if c.maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.maxRetries))
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-200 status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// clientError reports a 4xx status other than 429, which retrying cannot fix
func (e *HTTPStatusError) clientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

func isClientError(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.clientError()
}

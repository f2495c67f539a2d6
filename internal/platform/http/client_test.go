package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(ClientOptions{
		Timeout:         time.Second,
		RequestsPerSec:  100,
		MaxRetries:      2,
		MaxRetryTimeout: 5 * time.Second,
	})
}

func TestDoRequest_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := newTestClient().DoRequest(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoRequest_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = newTestClient().DoRequest(context.Background(), req)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRequest_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = newTestClient().DoRequest(context.Background(), req)
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoRequest_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = newTestClient().DoRequest(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoRequest_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{
		RequestsPerSec:  100,
		MaxRetries:      1,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	})

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		_, err = client.DoRequest(context.Background(), req)
		require.Error(t, err)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = client.DoRequest(context.Background(), req)

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, gobreaker.StateOpen, client.Breaker.State())
}

func TestDoRequest_ClientErrorsKeepBreakerClosed(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"forbidden", http.StatusForbidden},
		{"bad request", http.StatusBadRequest},
		{"not found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(ClientOptions{
				RequestsPerSec:  100,
				BreakerFailures: 2,
				BreakerTimeout:  time.Minute,
			})

			for i := 0; i < 5; i++ {
				req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
				require.NoError(t, err)
				_, err = client.DoRequest(context.Background(), req)

				var statusErr *HTTPStatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.status, statusErr.StatusCode)
			}

			assert.Equal(t, int32(5), calls.Load())
			assert.Equal(t, gobreaker.StateClosed, client.Breaker.State())
		})
	}
}

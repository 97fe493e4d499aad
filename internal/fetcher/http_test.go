package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Get(context.Background(), srv.URL+"/tables")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Get(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Get(context.Background(), srv.URL+"/flaky")
	require.NoError(t, err)
	defer body.Close()

	data, _ := io.ReadAll(body)
	assert.Equal(t, "recovered", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 2, Timeout: time.Second})
	_, err := f.Get(context.Background(), srv.URL+"/down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deso", req["regionType"])

		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.PostJSON(context.Background(), srv.URL+"/tables/TAB5956/data", map[string]any{
		"regionType": "deso",
	})
	require.NoError(t, err)
	defer body.Close()

	data, _ := io.ReadAll(body)
	assert.Equal(t, `{"data":[]}`, string(data))
}

func TestPostJSONRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		// The retried request must carry the body again.
		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"q":1}`, string(data))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.PostJSON(context.Background(), srv.URL+"/data", map[string]int{"q": 1})
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, int32(2), calls.Load())
}

func TestRateLimiterApplied(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// One token, no refill within the test window: second call must wait.
	host := srv.Listener.Addr().String()
	f := NewHTTPFetcher(HTTPOptions{
		Timeout: 5 * time.Second,
		RateLimiters: map[string]*rate.Limiter{
			host: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		},
	})

	start := time.Now()
	for range 2 {
		body, err := f.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		body.Close()
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher()
	_, err := f.Get(ctx, srv.URL)
	require.Error(t, err)
}

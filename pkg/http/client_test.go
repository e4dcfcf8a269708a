package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendAndParseRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("User-Agent") != defaultUserAgent {
			t.Errorf("unexpected headers %v", r.Header)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["coin"]})
	}))
	defer srv.Close()

	c := NewClient(WithRetries(2, time.Millisecond))
	var out map[string]string
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   map[string]string{"coin": "BTC"},
	}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["echo"] != "BTC" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected retry then success, got %v after %d calls", out, calls)
	}
}

func TestSendAndParseDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad coin", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithRetries(3, time.Millisecond))
	err := c.SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, nil)

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest || se.Retryable() {
		t.Fatalf("expected non-retryable 400, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestSendAndParseQueryAndRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "ETHUSDT" {
			t.Errorf("missing query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		URL:   srv.URL,
		Query: map[string][]string{"symbol": {"ETHUSDT"}},
	}, nil)

	var se *StatusError
	if !errors.As(err, &se) || se.RetryAfter != 7*time.Second {
		t.Fatalf("expected 503 with Retry-After 7s, got %v", err)
	}
}

func TestSendAndParseStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(WithRetries(5, time.Hour))
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := c.SendAndParse(ctx, &RequestOptions{URL: srv.URL}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled while backing off, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSendAndParseRetriesTransportErrors(t *testing.T) {
	var calls int32
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection reset")
	})

	err := NewClient(WithTransport(rt), WithRetries(2, time.Millisecond)).
		SendAndParse(context.Background(), &RequestOptions{URL: "http://exchange.invalid/info"}, nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/service/ratelimit"
	pkghttp "ParamSweep/pkg/http"
	applogger "ParamSweep/pkg/logger"
)

var fixedNow = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestHyperliquidCandles(t *testing.T) {
	var got hlCandleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/info" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		base := fixedNow.Add(-3 * time.Minute).UnixMilli()
		fmt.Fprintf(w, `[
			{"t": %d, "o": "100.5", "h": "101", "l": "99.9", "c": "100.7", "v": "12.25"},
			{"t": %d, "o": "100.7", "h": "102", "l": "100.1", "c": "101.9", "v": "8"},
			{"t": %d, "o": "101.9", "h": "103", "l": "101", "c": "102.5", "v": "3.5"}
		]`, base, base+60000, base+120000)
	}))
	defer srv.Close()

	h := NewHyperliquidCandles(pkghttp.NewClient(), srv.URL, ratelimit.New(time.Millisecond))
	h.now = func() time.Time { return fixedNow }

	series, err := h.Candles(context.Background(), domrepo.CandleQuery{Coin: "BTC", Interval: domrepo.Interval1m, Lookback: 3 * time.Minute})
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if got.Type != "candleSnapshot" || got.Req.Coin != "BTC" || got.Req.Interval != "1m" {
		t.Fatalf("unexpected request body %+v", got)
	}
	if got.Req.EndTime != fixedNow.UnixMilli() || got.Req.StartTime != fixedNow.Add(-3*time.Minute).UnixMilli() {
		t.Fatalf("unexpected window %d..%d", got.Req.StartTime, got.Req.EndTime)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(series))
	}
	if series[0].Open != 100.5 || series[0].Volume != 12.25 || series[2].Close != 102.5 {
		t.Fatalf("unexpected values %+v", series)
	}
}

func TestHyperliquidCandlesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	h := NewHyperliquidCandles(pkghttp.NewClient(), srv.URL, ratelimit.New(time.Millisecond))
	_, err := h.Candles(context.Background(), domrepo.CandleQuery{Coin: "BTC", Interval: domrepo.Interval1h, Lookback: time.Hour})

	var se *pkghttp.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
}

func TestBinanceCandles(t *testing.T) {
	var symbol, interval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		symbol = r.URL.Query().Get("symbol")
		interval = r.URL.Query().Get("interval")
		base := fixedNow.Add(-2 * time.Hour).UnixMilli()
		fmt.Fprintf(w, `[
			[%d, "60000.10", "60500.00", "59900.00", "60400.00", "10.5", %d, "0", 100, "0", "0", "0"],
			[%d, "60400.00", "61000.00", "60300.00", "60900.00", "7.25", %d, "0", 80, "0", "0", "0"]
		]`, base, base+3599999, base+3600000, base+7199999)
	}))
	defer srv.Close()

	b := NewBinanceCandles(srv.URL, "usdt", 5*time.Second, ratelimit.New(time.Millisecond))
	b.now = func() time.Time { return fixedNow }

	series, err := b.Candles(context.Background(), domrepo.CandleQuery{Coin: "eth", Interval: domrepo.Interval1h, Lookback: 2 * time.Hour})
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if symbol != "ETHUSDT" || interval != "1h" {
		t.Fatalf("unexpected query symbol=%q interval=%q", symbol, interval)
	}
	if len(series) != 2 || series[0].Open != 60000.10 || series[1].Volume != 7.25 {
		t.Fatalf("unexpected series %+v", series)
	}
	if !series[1].Timestamp.Equal(fixedNow.Add(-time.Hour)) {
		t.Fatalf("unexpected timestamp %v", series[1].Timestamp)
	}
}

func TestParseCandleRejectsGarbage(t *testing.T) {
	if _, err := parseCandle(0, "1", "2", "x", "1", "1"); err == nil {
		t.Fatalf("expected parse error")
	}
}

type stubProvider struct {
	series models.Series
	err    error
}

func (s stubProvider) Candles(context.Context, domrepo.CandleQuery) (models.Series, error) {
	return append(models.Series(nil), s.series...), s.err
}

type recordingArchive struct {
	stored int
	err    error
}

func (a *recordingArchive) StoreCandles(_ context.Context, _ string, _ domrepo.Interval, s models.Series) error {
	a.stored += len(s)
	return a.err
}

func (a *recordingArchive) Close() error { return nil }

type stubMetrics struct{ errors []string }

func (m *stubMetrics) RecordEvaluation(string, string)      {}
func (m *stubMetrics) RecordSweepProgress(string, int, int) {}
func (m *stubMetrics) RecordParamLookup(string, string)     {}
func (m *stubMetrics) RecordSignal(string, string)          {}
func (m *stubMetrics) RecordError(kind string)              { m.errors = append(m.errors, kind) }
func (m *stubMetrics) RecordLatency(string, float64)        {}

func at(min int, closePrice float64) models.Candle {
	return models.Candle{Timestamp: fixedNow.Add(time.Duration(min) * time.Minute), Open: closePrice, High: closePrice, Low: closePrice, Close: closePrice}
}

func TestInstrumentedCandlesNormalizes(t *testing.T) {
	archive := &recordingArchive{err: errors.New("clickhouse down")}
	metrics := &stubMetrics{}
	p := NewInstrumentedCandles(stubProvider{series: models.Series{at(2, 3), at(0, 1), at(1, 2), at(2, 4)}}, archive, metrics, applogger.Nop())

	series, err := p.Candles(context.Background(), domrepo.CandleQuery{Coin: "BTC", Interval: domrepo.Interval1m})
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	closes := series.Closes()
	if len(closes) != 3 || closes[0] != 1 || closes[1] != 2 || closes[2] != 4 {
		t.Fatalf("expected sorted, deduplicated closes [1 2 4], got %v", closes)
	}
	if archive.stored != 3 {
		t.Fatalf("expected archive to receive 3 candles, got %d", archive.stored)
	}
	if strings.Join(metrics.errors, ",") != "candle_archive" {
		t.Fatalf("archive failure must be recorded but not returned, got %v", metrics.errors)
	}
}

func TestInstrumentedCandlesClassifiesFailures(t *testing.T) {
	metrics := &stubMetrics{}
	p := NewInstrumentedCandles(stubProvider{err: errors.New("connection reset")}, nil, metrics, applogger.Nop())
	if _, err := p.Candles(context.Background(), domrepo.CandleQuery{Coin: "BTC", Interval: domrepo.Interval1m}); !errors.Is(err, domrepo.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}

	p = NewInstrumentedCandles(stubProvider{}, nil, metrics, applogger.Nop())
	if _, err := p.Candles(context.Background(), domrepo.CandleQuery{Coin: "BTC", Interval: domrepo.Interval1m}); !errors.Is(err, domrepo.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for empty series, got %v", err)
	}
}

package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	applogger "ParamSweep/pkg/logger"
)

func record(coin string, strategy models.StrategyID, at time.Time, period float64) *models.ParameterRecord {
	return &models.ParameterRecord{
		Coin:           coin,
		Strategy:       strategy,
		Timestamp:      at,
		TimeRange:      "24 Hours",
		PositionSize:   100,
		BestParameters: models.Params{"period": period},
	}
}

func TestFileParamStoreLatestWins(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileParamStore(dir, applogger.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, rec := range []*models.ParameterRecord{
		record("BTC", "rsi-1h", base.Add(2*time.Hour), 21),
		record("BTC", "rsi-1h", base, 14),
		record("BTC", "rsi-1h", base.Add(time.Hour), 18),
		record("ETH", "rsi-1h", base.Add(5*time.Hour), 7),
	} {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	got, err := store.Latest(ctx, "BTC", "rsi-1h")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.BestParameters.Float("period", 0) != 21 {
		t.Fatalf("expected newest record, got %+v", got)
	}
	if !got.Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected timestamp %v", got.Timestamp)
	}

	if _, err := os.Stat(filepath.Join(dir, "BTC_rsi-1h_20240301_140000.json")); err != nil {
		t.Fatalf("expected file named by coin, strategy and run time: %v", err)
	}
}

func TestFileParamStoreMiss(t *testing.T) {
	store, err := NewFileParamStore(t.TempDir(), applogger.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_ = store.Save(context.Background(), record("BTC", "sma-5min", time.Now(), 5))

	if _, err := store.Latest(context.Background(), "BTC", "rsi-1h"); !errors.Is(err, domrepo.ErrParameterLookupMiss) {
		t.Fatalf("expected lookup miss, got %v", err)
	}
}

func TestFileParamStoreToleratesForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileParamStore(dir, applogger.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	files := map[string]string{
		"SOL_macd-15min_20240101_000000.json": `{not json`,
		"SOL_macd-15min_20240102_000000.json": `{
  "coin": "SOL",
  "strategy": "macd-15min",
  "best_parameters": {"fast_period": 8},
  "extra_field": {"nested": true}
}`,
		"notes.txt": "ignore me",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	got, err := store.Latest(context.Background(), "SOL", "macd-15min")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.BestParameters.Float("fast_period", 0) != 8 {
		t.Fatalf("unexpected params %+v", got.BestParameters)
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Timestamp.Equal(want) {
		t.Fatalf("expected timestamp from file name, got %v", got.Timestamp)
	}
}

func TestFileParamStoreReadsZonelessTimestamps(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileParamStore(dir, applogger.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	files := map[string]string{
		"BTC_rsi-1h_20240501_120000.json": `{"coin":"BTC","strategy":"rsi-1h","timestamp":"2024-05-01T12:00:00","best_parameters":{"period":14}}`,
		"ETH_rsi-1h_20240502_080000.json": `{"coin":"ETH","strategy":"rsi-1h","timestamp":"yesterday","best_parameters":{"period":9}}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	cases := []struct {
		coin   string
		period float64
		want   time.Time
	}{
		{"BTC", 14, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"ETH", 9, time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := store.Latest(context.Background(), tc.coin, "rsi-1h")
		if err != nil {
			t.Fatalf("%s latest: %v", tc.coin, err)
		}
		if got.BestParameters.Float("period", 0) != tc.period {
			t.Fatalf("%s: unexpected params %+v", tc.coin, got.BestParameters)
		}
		if !got.Timestamp.Equal(tc.want) {
			t.Fatalf("%s: expected timestamp %v, got %v", tc.coin, tc.want, got.Timestamp)
		}
	}
}

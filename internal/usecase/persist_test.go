package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ParamSweep/internal/domain/models"
	"ParamSweep/pkg/logger"
)

func TestPersistBestContinuesAfterFailure(t *testing.T) {
	store := &memStore{fail: map[string]bool{"ETH": true}}
	pub := &fakePublisher{err: errors.New("broker down")}
	metrics := newFakeMetrics()
	p := NewPersister(store, pub, metrics, logger.Nop())
	runAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return runAt }

	best := []models.BacktestResult{row("ETH", 12, 10), row("BTC", 9, 12), row("SOL", 2, 14)}
	for i := range best {
		best[i].Strategy = "rsi-1h"
	}
	report := p.PersistBest(context.Background(), best, "24 Hours", 100)

	if !report.Partial() || len(report.Failed) != 1 || report.Failed[0].Coin != "ETH" {
		t.Fatalf("unexpected failures %+v", report.Failed)
	}
	if !strings.Contains(report.Failed[0].Error, "persistence failure") {
		t.Fatalf("failure not classified: %q", report.Failed[0].Error)
	}
	if len(report.Saved) != 2 || report.Saved[0] != "BTC" || report.Saved[1] != "SOL" {
		t.Fatalf("unexpected saved %v", report.Saved)
	}
	if len(store.records) != 2 || !store.records[0].Timestamp.Equal(runAt) || store.records[0].TimeRange != "24 Hours" {
		t.Fatalf("unexpected records %+v", store.records)
	}
	if len(pub.records) != 2 {
		t.Fatalf("expected 2 publish attempts, got %d", len(pub.records))
	}
	if metrics.errors["persist"] != 1 || metrics.errors["publish_record"] != 2 {
		t.Fatalf("unexpected error metrics %v", metrics.errors)
	}
}

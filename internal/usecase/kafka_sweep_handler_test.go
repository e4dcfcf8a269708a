package usecase

import (
	"context"
	"testing"

	"ParamSweep/internal/domain/models"
	pkgkafka "ParamSweep/pkg/kafka"
	"ParamSweep/pkg/logger"
)

func TestKafkaSweepHandler(t *testing.T) {
	candles := &fakeCandles{series: map[string]models.Series{"BTC": seriesOf(oscillating(3, 2))}}
	store := &memStore{}
	h := NewKafkaSweepHandler("sweeps", testSweeps(candles, store), newFakeMetrics(), logger.Nop())

	if h.Topic() != "sweeps" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}
	if err := h.Handle(context.Background(), []byte("{not json")); !pkgkafka.IsPermanent(err) {
		t.Fatalf("expected permanent decode error, got %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"strategy":"rsi-1min"}`)); !pkgkafka.IsPermanent(err) {
		t.Fatalf("expected permanent validation error for missing coins, got %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"strategy":"nope-1m","coins":["BTC"]}`)); !pkgkafka.IsPermanent(err) {
		t.Fatalf("expected permanent error for unknown strategy, got %v", err)
	}

	msg := `{"strategy":"rsi-1min","coins":["BTC"],"ranges":{"period":[14],"oversold":[30],"overbought":[70]}}`
	if err := h.Handle(context.Background(), []byte(msg)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.records) != 1 || store.records[0].TimeRange != "24 Hours" || store.records[0].PositionSize != 100 {
		t.Fatalf("defaults not applied to kafka request: %+v", store.records)
	}
}

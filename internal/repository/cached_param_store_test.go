package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/pkg/cache"
	applogger "ParamSweep/pkg/logger"
)

type countingStore struct {
	latestCalls int
	records     []*models.ParameterRecord
}

func (s *countingStore) Save(_ context.Context, rec *models.ParameterRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *countingStore) Latest(_ context.Context, coin string, strategy models.StrategyID) (*models.ParameterRecord, error) {
	s.latestCalls++
	for i := len(s.records) - 1; i >= 0; i-- {
		if r := s.records[i]; r.Coin == coin && r.Strategy == strategy {
			return r, nil
		}
	}
	return nil, domrepo.ErrParameterLookupMiss
}

func TestCachedParamStoreReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "paramsweep")
	inner := &countingStore{}
	store := NewCachedParamStore(inner, c, time.Minute, applogger.Nop())
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, record("BTC", "rsi-1h", t0, 14)); err != nil {
		t.Fatalf("save: %v", err)
	}
	for i := 0; i < 3; i++ {
		got, err := store.Latest(ctx, "BTC", "rsi-1h")
		if err != nil || got.BestParameters.Float("period", 0) != 14 {
			t.Fatalf("latest %d: %+v %v", i, got, err)
		}
	}
	if inner.latestCalls != 1 {
		t.Fatalf("expected one backing read, got %d", inner.latestCalls)
	}
	if !mr.Exists("paramsweep:params:BTC:rsi-1h") {
		t.Fatalf("expected cached entry, keys %v", mr.Keys())
	}

	if err := store.Save(ctx, record("BTC", "rsi-1h", t0.Add(time.Hour), 21)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Latest(ctx, "BTC", "rsi-1h")
	if err != nil || got.BestParameters.Float("period", 0) != 21 {
		t.Fatalf("save must invalidate the cached record: %+v %v", got, err)
	}
	if inner.latestCalls != 2 {
		t.Fatalf("expected a second backing read after save, got %d", inner.latestCalls)
	}
}

func TestCachedParamStoreMissIsNotCached(t *testing.T) {
	mc := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer mc.Close()
	inner := &countingStore{}
	store := NewCachedParamStore(inner, mc, time.Minute, applogger.Nop())

	for i := 0; i < 2; i++ {
		if _, err := store.Latest(context.Background(), "DOGE", "sma-5min"); !errors.Is(err, domrepo.ErrParameterLookupMiss) {
			t.Fatalf("expected miss, got %v", err)
		}
	}
	if inner.latestCalls != 2 || mc.Len() != 0 {
		t.Fatalf("misses must reach the backing store every time (calls %d, cached %d)", inner.latestCalls, mc.Len())
	}
}

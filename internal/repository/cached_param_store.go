package repository

import (
	"context"
	"errors"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/pkg/cache"
	applogger "ParamSweep/pkg/logger"
)

// CachedParamStore puts a read-through cache in front of another store.
// Save writes through and drops the cached entry for the pair.
type CachedParamStore struct {
	next  domrepo.ParameterStore
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

// NewCachedParamStore wraps next.
func NewCachedParamStore(next domrepo.ParameterStore, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedParamStore {
	return &CachedParamStore{next: next, cache: c, ttl: ttl, l: l.With("param_cache")}
}

func paramCacheKey(coin string, strategy models.StrategyID) string {
	return cache.Key("params", coin, string(strategy))
}

func (s *CachedParamStore) Save(ctx context.Context, rec *models.ParameterRecord) error {
	if err := s.next.Save(ctx, rec); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, paramCacheKey(rec.Coin, rec.Strategy)); err != nil {
		s.l.Warn("Failed to invalidate cached parameters",
			applogger.String("coin", rec.Coin),
			applogger.String("strategy", string(rec.Strategy)),
			applogger.Error(err))
	}
	return nil
}

func (s *CachedParamStore) Latest(ctx context.Context, coin string, strategy models.StrategyID) (*models.ParameterRecord, error) {
	key := paramCacheKey(coin, strategy)

	var rec models.ParameterRecord
	err := s.cache.Get(ctx, key, &rec)
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.l.Warn("Parameter cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	found, err := s.next.Latest(ctx, coin, strategy)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, found, s.ttl); err != nil {
		s.l.Warn("Parameter cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return found, nil
}

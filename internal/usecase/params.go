package usecase

import (
	"context"
	"errors"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/services/strategies"
	"ParamSweep/pkg/logger"
)

const (
	ParamsOptimized = "optimized"
	ParamsDefault   = "default"
)

// LookupResult carries the parameters to use and where they came from.
type LookupResult struct {
	Params models.Params
	Source string
	Record *models.ParameterRecord
}

// ParamsReader resolves the parameters a live generator should use.
type ParamsReader struct {
	store   domrepo.ParameterStore
	catalog *strategies.Catalog
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewParamsReader(store domrepo.ParameterStore, catalog *strategies.Catalog, metrics domrepo.Metrics, log *logger.Logger) *ParamsReader {
	return &ParamsReader{store: store, catalog: catalog, metrics: metrics, log: log.With("params_reader")}
}

// Lookup returns the latest persisted parameters merged over the strategy
// defaults. Parameters unknown to the strategy are ignored. A missing record
// or a store failure falls back to the defaults; only an unknown strategy
// is an error.
func (r *ParamsReader) Lookup(ctx context.Context, coin string, strategy models.StrategyID) (LookupResult, error) {
	def, _, err := r.catalog.Resolve(strategy)
	if err != nil {
		return LookupResult{}, err
	}
	defaults := def.Defaults.Clone()

	rec, err := r.store.Latest(ctx, coin, strategy)
	if err != nil {
		r.metrics.RecordParamLookup(strategy.String(), "miss")
		fields := []logger.Field{
			logger.String("coin", coin),
			logger.String("strategy", strategy.String()),
			logger.String("params", defaults.String()),
		}
		if errors.Is(err, domrepo.ErrParameterLookupMiss) {
			r.log.Info("no optimized parameters, using defaults", fields...)
		} else {
			r.metrics.RecordError("param_lookup")
			r.log.Warn("parameter store lookup failed, using defaults", append(fields, logger.Error(err))...)
		}
		return LookupResult{Params: defaults, Source: ParamsDefault}, nil
	}

	params := defaults
	for name := range defaults {
		if v, ok := rec.BestParameters[name]; ok {
			params[name] = v
		}
	}
	r.metrics.RecordParamLookup(strategy.String(), "hit")
	r.log.Debug("using optimized parameters",
		logger.String("coin", coin),
		logger.String("strategy", strategy.String()),
		logger.String("params", params.String()),
	)
	return LookupResult{Params: params, Source: ParamsOptimized, Record: rec}, nil
}

// Latest returns the most recent persisted record without merging defaults.
func (r *ParamsReader) Latest(ctx context.Context, coin string, strategy models.StrategyID) (*models.ParameterRecord, error) {
	if _, _, err := r.catalog.Resolve(strategy); err != nil {
		return nil, err
	}
	return r.store.Latest(ctx, coin, strategy)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/pkg/logger"
)

// Persister writes the best-per-coin rows of a sweep as ParameterRecords.
type Persister struct {
	store   domrepo.ParameterStore
	pub     domrepo.Publisher
	metrics domrepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewPersister creates a persister. pub may be nil.
func NewPersister(store domrepo.ParameterStore, pub domrepo.Publisher, metrics domrepo.Metrics, log *logger.Logger) *Persister {
	return &Persister{
		store:   store,
		pub:     pub,
		metrics: metrics,
		log:     log.With("persister"),
		now:     time.Now,
	}
}

// PersistBest saves one record per row. A failed write is logged and
// reported; it never stops the remaining writes.
func (p *Persister) PersistBest(ctx context.Context, best []models.BacktestResult, timeRange string, positionSize float64) models.SaveReport {
	report := models.SaveReport{Saved: []string{}}
	runAt := p.now()

	for _, res := range best {
		rec := models.NewParameterRecord(res, runAt, timeRange, positionSize)

		start := time.Now()
		err := p.store.Save(ctx, rec)
		p.metrics.RecordLatency("param_store_save", time.Since(start).Seconds())
		if err != nil {
			err = fmt.Errorf("%w: %v", domrepo.ErrPersistenceFailure, err)
			p.metrics.RecordError("persist")
			p.log.Error("failed to save parameters",
				logger.String("coin", res.Coin),
				logger.String("strategy", res.Strategy.String()),
				logger.Error(err),
			)
			report.Failed = append(report.Failed, models.CoinError{Coin: res.Coin, Error: err.Error()})
			continue
		}
		report.Saved = append(report.Saved, res.Coin)
		p.log.Info("saved parameters",
			logger.String("coin", res.Coin),
			logger.String("strategy", res.Strategy.String()),
			logger.String("params", res.Params.String()),
			logger.Float64("total_profit", res.TotalProfit),
		)

		if p.pub == nil {
			continue
		}
		if err := p.pub.PublishRecord(ctx, rec); err != nil {
			p.metrics.RecordError("publish_record")
			p.log.Warn("failed to publish parameter record",
				logger.String("coin", res.Coin),
				logger.Error(err),
			)
		}
	}
	return report
}

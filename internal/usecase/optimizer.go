package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/services/strategies"
	"ParamSweep/pkg/logger"
)

// ProgressFunc receives completed/total after every evaluation. Calls are
// serialized and Completed never decreases.
type ProgressFunc func(models.Progress)

type OptimizeParams struct {
	Strategy     models.StrategyID
	Coins        []string
	Ranges       models.Ranges // nil uses the strategy's configured ranges
	TimeRange    time.Duration
	PositionSize float64
}

type OptimizeResult struct {
	Strategy models.StrategyID
	Results  []models.BacktestResult
	Skipped  []models.CoinError
	Progress models.Progress
}

// Optimizer runs grid searches over (coin, parameter tuple) pairs.
type Optimizer struct {
	catalog *strategies.Catalog
	candles domrepo.CandleProvider
	metrics domrepo.Metrics
	log     *logger.Logger
	workers int
}

func NewOptimizer(
	catalog *strategies.Catalog,
	candles domrepo.CandleProvider,
	metrics domrepo.Metrics,
	log *logger.Logger,
	workers int,
) *Optimizer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Optimizer{
		catalog: catalog,
		candles: candles,
		metrics: metrics,
		log:     log.With("optimizer"),
		workers: workers,
	}
}

type evalJob struct {
	slot   int
	coin   string
	series models.Series
	params models.Params
}

// Optimize fetches each coin once, evaluates every tuple of the grid and
// returns the results ordered by (coin, tuple) regardless of completion
// order. Coins that cannot supply the grid's minimum lookback are skipped.
// Cancelling ctx abandons the pending result set.
func (o *Optimizer) Optimize(ctx context.Context, p OptimizeParams, progress ProgressFunc) (*OptimizeResult, error) {
	def, ev, err := o.catalog.Resolve(p.Strategy)
	if err != nil {
		return nil, err
	}
	ranges := p.Ranges
	if len(ranges) == 0 {
		ranges = def.Ranges
	}
	grid := strategies.Grid(ranges)
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty parameter grid for %s", domrepo.ErrInvalidParams, p.Strategy)
	}
	need := strategies.MinLookback(ev, grid)
	strategy := p.Strategy.String()

	start := time.Now()
	out := &OptimizeResult{Strategy: p.Strategy}

	type coinSeries struct {
		coin   string
		series models.Series
	}
	var usable []coinSeries
	for _, coin := range p.Coins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := o.candles.Candles(ctx, domrepo.CandleQuery{
			Coin:     coin,
			Interval: def.Interval,
			Lookback: p.TimeRange,
		})
		if err == nil && len(series) < need {
			err = fmt.Errorf("%w: %d candles, need %d", domrepo.ErrDataUnavailable, len(series), need)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.log.Warn("skipping coin",
				logger.String("coin", coin),
				logger.String("strategy", strategy),
				logger.Error(err),
			)
			o.metrics.RecordError("data_unavailable")
			out.Skipped = append(out.Skipped, models.CoinError{Coin: coin, Error: err.Error()})
			continue
		}
		usable = append(usable, coinSeries{coin: coin, series: series})
	}

	total := len(usable) * len(grid)
	out.Progress = models.Progress{Total: total}
	slots := make([]*models.BacktestResult, total)

	jobs := make(chan evalJob)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		completed++
		prog := models.Progress{Completed: completed, Total: total}
		o.metrics.RecordSweepProgress(strategy, completed, total)
		if progress != nil {
			progress(prog)
		}
	}

	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				res, err := strategies.Evaluate(ev, job.series, job.coin, p.Strategy, job.params, p.PositionSize)
				switch {
				case err == nil:
					slots[job.slot] = res
					o.metrics.RecordEvaluation(strategy, "result")
				case errors.Is(err, domrepo.ErrNoTradesGenerated):
					o.metrics.RecordEvaluation(strategy, "no_trades")
				case errors.Is(err, domrepo.ErrDataUnavailable):
					o.metrics.RecordEvaluation(strategy, "no_data")
				default:
					o.metrics.RecordEvaluation(strategy, "error")
					o.log.Debug("evaluation failed",
						logger.String("coin", job.coin),
						logger.String("params", job.params.String()),
						logger.Error(err),
					)
				}
				report()
			}
		}()
	}

feed:
	for ci, cs := range usable {
		for ti, params := range grid {
			select {
			case <-ctx.Done():
				break feed
			case jobs <- evalJob{slot: ci*len(grid) + ti, coin: cs.coin, series: cs.series, params: params}:
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		o.log.Info("sweep abandoned", logger.String("strategy", strategy), logger.Int("completed", completed))
		return nil, err
	}

	for _, res := range slots {
		if res != nil {
			out.Results = append(out.Results, *res)
		}
	}
	out.Progress.Completed = completed
	o.metrics.RecordLatency("sweep", time.Since(start).Seconds())
	o.log.Info("sweep finished",
		logger.String("strategy", strategy),
		logger.Int("coins", len(usable)),
		logger.Int("tuples", len(grid)),
		logger.Int("results", len(out.Results)),
		logger.Duration("elapsed_ms", time.Since(start)),
	)
	return out, nil
}

package usecase

import (
	"context"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/services/strategies"
	"ParamSweep/pkg/logger"
)

// liveMargin is the number of candles fetched beyond the lookback.
const liveMargin = 50

// LiveSignals computes one signal for the current candle window of a coin.
type LiveSignals struct {
	catalog *strategies.Catalog
	reader  *ParamsReader
	candles domrepo.CandleProvider
	pub     domrepo.Publisher
	sink    domrepo.SignalSink
	metrics domrepo.Metrics
	log     *logger.Logger
}

// NewLiveSignals creates the generator. pub and sink may be nil.
func NewLiveSignals(
	catalog *strategies.Catalog,
	reader *ParamsReader,
	candles domrepo.CandleProvider,
	pub domrepo.Publisher,
	sink domrepo.SignalSink,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *LiveSignals {
	return &LiveSignals{
		catalog: catalog,
		reader:  reader,
		candles: candles,
		pub:     pub,
		sink:    sink,
		metrics: metrics,
		log:     log.With("live_signals"),
	}
}

// Generate looks up the coin's parameters, fetches lookback+50 candles and
// evaluates the last one.
func (l *LiveSignals) Generate(ctx context.Context, coin string, strategy models.StrategyID) (*models.Signal, error) {
	start := time.Now()
	def, ev, err := l.catalog.Resolve(strategy)
	if err != nil {
		return nil, err
	}
	lookup, err := l.reader.Lookup(ctx, coin, strategy)
	if err != nil {
		return nil, err
	}

	count := ev.Lookback(lookup.Params) + liveMargin
	series, err := l.candles.Candles(ctx, domrepo.CandleQuery{
		Coin:     coin,
		Interval: def.Interval,
		Lookback: time.Duration(count) * def.Interval.Duration(),
	})
	if err != nil {
		l.metrics.RecordError("data_unavailable")
		l.log.Warn("insufficient data for live signal",
			logger.String("coin", coin),
			logger.String("strategy", strategy.String()),
			logger.Error(err),
		)
		return nil, err
	}

	sig, err := strategies.Live(ev, series, coin, strategy, lookup.Params)
	if err != nil {
		l.metrics.RecordError("live_signal")
		return nil, err
	}
	sig.Metadata["params_source"] = lookup.Source

	l.metrics.RecordSignal(strategy.String(), string(sig.Action))
	l.metrics.RecordLatency("live_signal", time.Since(start).Seconds())
	l.log.Info("live signal",
		logger.String("coin", coin),
		logger.String("strategy", strategy.String()),
		logger.String("action", string(sig.Action)),
		logger.Float64("strength", sig.Strength),
		logger.Float64("price", sig.Price),
	)

	if l.sink != nil {
		l.sink.Broadcast(&sig)
	}
	if l.pub != nil {
		if err := l.pub.PublishSignal(ctx, &sig); err != nil {
			l.metrics.RecordError("publish_signal")
			l.log.Warn("failed to publish signal", logger.String("coin", coin), logger.Error(err))
		}
	}
	return &sig, nil
}

// Run generates signals for every (coin, strategy) pair each interval until
// ctx is done. Failures of single pairs are logged and skipped.
func (l *LiveSignals) Run(ctx context.Context, coins []string, strategyIDs []models.StrategyID, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		for _, id := range strategyIDs {
			for _, coin := range coins {
				if ctx.Err() != nil {
					return
				}
				_, _ = l.Generate(ctx, coin, id)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

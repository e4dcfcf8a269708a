package repository

import (
	"context"
	"time"

	"ParamSweep/internal/domain/models"
)

// CandleQuery asks for the candles covering Lookback up to now.
type CandleQuery struct {
	Coin     string
	Interval Interval
	Lookback time.Duration
}

// CandleProvider returns an ordered OHLCV series or ErrDataUnavailable.
type CandleProvider interface {
	Candles(ctx context.Context, q CandleQuery) (models.Series, error)
}

// CandleArchive keeps a copy of fetched candles.
type CandleArchive interface {
	StoreCandles(ctx context.Context, coin string, iv Interval, s models.Series) error
	Close() error
}

// ParameterStore persists ParameterRecords keyed by (coin, strategy, run).
// Latest returns the most recently written record or ErrParameterLookupMiss.
type ParameterStore interface {
	Save(ctx context.Context, rec *models.ParameterRecord) error
	Latest(ctx context.Context, coin string, strategy models.StrategyID) (*models.ParameterRecord, error)
}

// Publisher fans out records and live signals.
type Publisher interface {
	PublishRecord(ctx context.Context, rec *models.ParameterRecord) error
	PublishSignal(ctx context.Context, sig *models.Signal) error
	Close() error
}

// SignalSink receives live signals for local subscribers.
type SignalSink interface {
	Broadcast(sig *models.Signal)
}

type Metrics interface {
	RecordEvaluation(strategy, outcome string)
	RecordSweepProgress(strategy string, completed, total int)
	RecordParamLookup(strategy, result string)
	RecordSignal(strategy, action string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	applogger "ParamSweep/pkg/logger"
)

// InstrumentedCandles normalizes provider output to an ascending series
// without duplicate timestamps, records fetch latency, classifies failures
// as ErrDataUnavailable and optionally archives what was fetched.
type InstrumentedCandles struct {
	next    domrepo.CandleProvider
	archive domrepo.CandleArchive
	metrics domrepo.Metrics
	l       *applogger.Logger
}

// NewInstrumentedCandles wraps next. archive may be nil.
func NewInstrumentedCandles(next domrepo.CandleProvider, archive domrepo.CandleArchive, metrics domrepo.Metrics, l *applogger.Logger) *InstrumentedCandles {
	return &InstrumentedCandles{next: next, archive: archive, metrics: metrics, l: l.With("candles")}
}

func (p *InstrumentedCandles) Candles(ctx context.Context, q domrepo.CandleQuery) (models.Series, error) {
	start := time.Now()
	series, err := p.next.Candles(ctx, q)
	p.metrics.RecordLatency("candle_fetch", time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.metrics.RecordError("candle_fetch")
		if errors.Is(err, domrepo.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domrepo.ErrDataUnavailable, err)
	}
	series = normalize(series)
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no candles for %s", domrepo.ErrDataUnavailable, q.Coin)
	}

	if p.archive != nil {
		if err := p.archive.StoreCandles(ctx, q.Coin, q.Interval, series); err != nil {
			p.metrics.RecordError("candle_archive")
			p.l.Warn("failed to archive candles",
				applogger.String("coin", q.Coin),
				applogger.String("interval", string(q.Interval)),
				applogger.Error(err),
			)
		}
	}
	p.l.Debug("fetched candles",
		applogger.String("coin", q.Coin),
		applogger.String("interval", string(q.Interval)),
		applogger.Int("count", len(series)),
		applogger.Duration("elapsed_ms", time.Since(start)),
	)
	return series, nil
}

// normalize sorts by time and keeps the last candle seen for a timestamp.
func normalize(s models.Series) models.Series {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Timestamp.Before(s[j].Timestamp) })
	out := s[:0]
	for _, c := range s {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(c.Timestamp) {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}

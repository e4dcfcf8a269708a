package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seriesOf(prices []float64) models.Series {
	s := make(models.Series, len(prices))
	for i, p := range prices {
		s[i] = models.Candle{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Open:      p,
			High:      p,
			Low:       p,
			Close:     p,
			Volume:    1000,
		}
	}
	return s
}

// oscillating moves 2 per candle down for 20 candles and up for 20.
func oscillating(cycles int, step float64) []float64 {
	var prices []float64
	p := 200.0
	for c := 0; c < cycles; c++ {
		for i := 0; i < 20; i++ {
			p -= step
			prices = append(prices, p)
		}
		for i := 0; i < 20; i++ {
			p += step
			prices = append(prices, p)
		}
	}
	return prices
}

type fakeCandles struct {
	mu     sync.Mutex
	series map[string]models.Series
	calls  []domrepo.CandleQuery
}

func (f *fakeCandles) Candles(ctx context.Context, q domrepo.CandleQuery) (models.Series, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	s, ok := f.series[q.Coin]
	if !ok {
		return nil, domrepo.ErrDataUnavailable
	}
	return s, nil
}

type memStore struct {
	mu      sync.Mutex
	records []*models.ParameterRecord
	fail    map[string]bool
}

func (m *memStore) Save(ctx context.Context, rec *models.ParameterRecord) error {
	if m.fail[rec.Coin] {
		return errors.New("disk full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Latest(ctx context.Context, coin string, strategy models.StrategyID) (*models.ParameterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []*models.ParameterRecord
	for _, r := range m.records {
		if r.Coin == coin && r.Strategy == strategy {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return nil, domrepo.ErrParameterLookupMiss
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Timestamp.After(matches[j].Timestamp) })
	return matches[0], nil
}

type fakeMetrics struct {
	mu      sync.Mutex
	lookups map[string]int
	errors  map[string]int
	signals int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{lookups: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordEvaluation(strategy, outcome string)                 {}
func (m *fakeMetrics) RecordSweepProgress(strategy string, completed, total int) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)                  {}

func (m *fakeMetrics) RecordParamLookup(strategy, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[result]++
}

func (m *fakeMetrics) RecordSignal(strategy, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

type fakePublisher struct {
	mu      sync.Mutex
	records []*models.ParameterRecord
	signals []*models.Signal
	err     error
}

func (p *fakePublisher) PublishRecord(ctx context.Context, rec *models.ParameterRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	return p.err
}

func (p *fakePublisher) PublishSignal(ctx context.Context, sig *models.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals = append(p.signals, sig)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeSink struct {
	got []*models.Signal
}

func (s *fakeSink) Broadcast(sig *models.Signal) { s.got = append(s.got, sig) }

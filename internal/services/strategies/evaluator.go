// Package strategies turns candle series and parameter tuples into trading
// signals and backtest results for each strategy family.
package strategies

import (
	"errors"
	"fmt"

	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/domain/repository"
	"ParamSweep/internal/services/backtest"
)

// Evaluator implements one strategy family. Implementations are stateless;
// all tuning comes in through Params.
type Evaluator interface {
	Family() models.Family
	Defaults() models.Params
	Ranges() models.Ranges
	// Lookback is the minimum number of candles a tuple needs.
	Lookback(p models.Params) int
	// Signals returns the BUY/SELL signals for candles at index >= from,
	// in chronological order.
	Signals(s models.Series, p models.Params, from int) ([]models.Signal, error)
}

// liveEvaluator is implemented by families whose live check differs from
// the last step of a backtest.
type liveEvaluator interface {
	LiveSignals(s models.Series, p models.Params) ([]models.Signal, error)
}

// Evaluate backtests one parameter tuple on a series. It returns
// ErrDataUnavailable for a series shorter than the lookback and
// ErrNoTradesGenerated when no trade closed.
func Evaluate(ev Evaluator, s models.Series, coin string, id models.StrategyID, p models.Params, positionSize float64) (*models.BacktestResult, error) {
	p = ev.Defaults().Merge(p)
	if need := ev.Lookback(p); len(s) < need {
		return nil, fmt.Errorf("%w: %s has %d candles, need %d", repository.ErrDataUnavailable, coin, len(s), need)
	}

	signals, err := ev.Signals(s, p, 0)
	if err != nil {
		return nil, err
	}

	perf, ok := backtest.Summarize(backtest.Simulate(signals, positionSize))
	if !ok {
		return nil, repository.ErrNoTradesGenerated
	}
	return &models.BacktestResult{
		Coin:             coin,
		Strategy:         id,
		Params:           p,
		SignalsGenerated: len(signals),
		Performance:      perf,
	}, nil
}

// Live computes the signal for the last candle of s. When no rule fires the
// result is a HOLD at the last close.
func Live(ev Evaluator, s models.Series, coin string, id models.StrategyID, p models.Params) (models.Signal, error) {
	p = ev.Defaults().Merge(p)
	last, ok := s.Last()
	if !ok || len(s) < ev.Lookback(p) {
		return models.Signal{}, fmt.Errorf("%w: %s has %d candles, need %d", repository.ErrDataUnavailable, coin, len(s), ev.Lookback(p))
	}

	var signals []models.Signal
	var err error
	if le, ok := ev.(liveEvaluator); ok {
		signals, err = le.LiveSignals(s, p)
	} else {
		signals, err = ev.Signals(s, p, len(s)-1)
	}
	if err != nil {
		return models.Signal{}, err
	}

	sig := models.Signal{Timestamp: last.Timestamp, Price: last.Close, Action: models.ActionHold}
	if n := len(signals); n > 0 {
		sig = signals[n-1]
	}
	sig.Coin = coin
	sig.Source = id.String()
	if sig.Metadata == nil {
		sig.Metadata = map[string]interface{}{}
	}
	for _, name := range p.Names() {
		sig.Metadata["param_"+name] = p[name]
	}
	return sig, nil
}

func newSignal(c models.Candle, action models.Action, strength float64, meta map[string]interface{}) models.Signal {
	return models.Signal{
		Timestamp: c.Timestamp,
		Price:     c.Close,
		Action:    action,
		Strength:  strength,
		Metadata:  meta,
	}
}

func invalid(family models.Family, err error) error {
	return fmt.Errorf("%w: %s: %v", repository.ErrInvalidParams, family, err)
}

func defined(vs ...float64) bool {
	for _, v := range vs {
		if v != v {
			return false
		}
	}
	return true
}

// crossedAbove reports a move of a from <= b to > b between two candles.
func crossedAbove(prevA, prevB, curA, curB float64) bool {
	return defined(prevA, prevB, curA, curB) && prevA <= prevB && curA > curB
}

// crossedBelow reports a move of a from >= b to < b between two candles.
func crossedBelow(prevA, prevB, curA, curB float64) bool {
	return defined(prevA, prevB, curA, curB) && prevA >= prevB && curA < curB
}

func startAt(from, min int) int {
	if from < min {
		return min
	}
	return from
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var errLookbackTooShort = errors.New("lookback shorter than two pivot windows")

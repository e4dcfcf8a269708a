// Package backtest turns signal sequences into closed trades and
// summary statistics.
package backtest

import (
	"ParamSweep/internal/domain/models"
)

// Simulate replays signals in order with a single open position.
// A BUY opens a position only when flat and a SELL closes it only when
// open; anything else is ignored. A position still open at the end of
// the sequence is discarded.
func Simulate(signals []models.Signal, positionSize float64) []models.Trade {
	var (
		trades []models.Trade
		pos    *models.Position
	)
	for _, s := range signals {
		if !s.IsTrade() {
			continue
		}
		switch s.Action {
		case models.ActionBuy:
			if pos != nil {
				continue
			}
			pos = &models.Position{EntryTime: s.Timestamp, EntryPrice: s.Price, Size: positionSize}
		case models.ActionSell:
			if pos == nil {
				continue
			}
			trades = append(trades, closePosition(pos, s))
			pos = nil
		}
	}
	return trades
}

func closePosition(pos *models.Position, exit models.Signal) models.Trade {
	pnl := (exit.Price - pos.EntryPrice) / pos.EntryPrice * 100
	return models.Trade{
		EntryTime:    pos.EntryTime,
		EntryPrice:   pos.EntryPrice,
		ExitTime:     exit.Timestamp,
		ExitPrice:    exit.Price,
		PnLPercent:   pnl,
		ProfitAmount: pnl / 100 * pos.Size,
	}
}

// Summarize computes performance for trades. ok is false for an empty list.
// Trades with zero or negative profit count as losing.
func Summarize(trades []models.Trade) (perf models.Performance, ok bool) {
	if len(trades) == 0 {
		return models.Performance{}, false
	}
	for _, t := range trades {
		perf.TotalProfit += t.ProfitAmount
		if t.ProfitAmount > 0 {
			perf.WinningTrades++
		} else {
			perf.LosingTrades++
		}
	}
	perf.TotalTrades = len(trades)
	perf.WinRate = float64(perf.WinningTrades) / float64(perf.TotalTrades) * 100
	perf.AvgProfit = perf.TotalProfit / float64(perf.TotalTrades)
	return perf, true
}

package models

import "time"

// Position is the transient open position of a simulated run.
type Position struct {
	EntryTime  time.Time
	EntryPrice float64
	Size       float64 // quote currency
}

// Trade is a closed round trip.
type Trade struct {
	EntryTime    time.Time `json:"entry_time"`
	EntryPrice   float64   `json:"entry_price"`
	ExitTime     time.Time `json:"exit_time"`
	ExitPrice    float64   `json:"exit_price"`
	PnLPercent   float64   `json:"pnl_percent"`
	ProfitAmount float64   `json:"profit_amount"`
}

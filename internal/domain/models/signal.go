package models

import "time"

// Action is the trading decision carried by a Signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is produced by a strategy evaluator or a live generator.
// Strength is only meaningful for BUY and SELL.
type Signal struct {
	Coin      string                 `json:"coin,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Price     float64                `json:"price"`
	Action    Action                 `json:"action"`
	Strength  float64                `json:"strength"`
	Source    string                 `json:"source"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// IsTrade reports whether the signal can open or close a position.
func (s Signal) IsTrade() bool {
	return s.Action == ActionBuy || s.Action == ActionSell
}

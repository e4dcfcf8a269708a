package models

// Performance holds the summary statistics of a set of closed trades.
type Performance struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   float64 `json:"total_profit_usd"`
	AvgProfit     float64 `json:"avg_profit"`
}

// BacktestResult is one row per (coin, parameter tuple).
// It is only produced when at least one trade closed.
type BacktestResult struct {
	Coin             string     `json:"coin"`
	Strategy         StrategyID `json:"strategy"`
	Params           Params     `json:"params"`
	SignalsGenerated int        `json:"signals_generated"`
	Performance
}

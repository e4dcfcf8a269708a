package models

import "time"

type SweepStatus string

const (
	SweepPending   SweepStatus = "pending"
	SweepRunning   SweepStatus = "running"
	SweepDone      SweepStatus = "done"
	SweepFailed    SweepStatus = "failed"
	SweepAbandoned SweepStatus = "abandoned"
)

// Progress counts completed evaluations of a sweep.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// CoinError records a per-coin failure that did not abort the run.
type CoinError struct {
	Coin  string `json:"coin"`
	Error string `json:"error"`
}

// SaveReport tells the caller how much of the persistence step succeeded.
type SaveReport struct {
	Saved  []string    `json:"saved"`
	Failed []CoinError `json:"failed,omitempty"`
}

// Partial reports whether at least one write failed.
func (r SaveReport) Partial() bool { return len(r.Failed) > 0 }

// Sweep is the observable state of one optimization run.
type Sweep struct {
	ID           string           `json:"id"`
	Strategy     StrategyID       `json:"strategy"`
	Coins        []string         `json:"coins"`
	TimeRange    string           `json:"time_range"`
	PositionSize float64          `json:"position_size"`
	Status       SweepStatus      `json:"status"`
	Progress     Progress         `json:"progress"`
	Skipped      []CoinError      `json:"skipped,omitempty"`
	Best         []BacktestResult `json:"best,omitempty"`
	Save         *SaveReport      `json:"save,omitempty"`
	Error        string           `json:"error,omitempty"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   *time.Time       `json:"finished_at,omitempty"`
}

package repository

import "errors"

// Recoverable failure kinds. None of them is fatal to a sweep or to the
// live path; callers classify with errors.Is.
var (
	// ErrDataUnavailable: candle fetch failed or returned insufficient history.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNoTradesGenerated: a parameter tuple closed no trade.
	ErrNoTradesGenerated = errors.New("no trades generated")
	// ErrPersistenceFailure: a durable write failed.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrParameterLookupMiss: no persisted record for (coin, strategy).
	ErrParameterLookupMiss = errors.New("parameter lookup miss")

	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidParams   = errors.New("invalid parameters")
)

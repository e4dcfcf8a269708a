package models

import "strings"

// Family names a strategy evaluator implementation.
type Family string

const (
	FamilyRSI               Family = "rsi"
	FamilySMA               Family = "sma"
	FamilyRange             Family = "range"
	FamilyScalping          Family = "scalping"
	FamilyMACD              Family = "macd"
	FamilyBollinger         Family = "bollinger_bands"
	FamilySupportResistance Family = "support_resistance"
)

// StrategyID identifies a configured strategy as "<family>-<variant>",
// for example "rsi-1h", "bollinger_bands-30min" or "range-24h-low".
type StrategyID string

// Family returns the evaluator family encoded in the id.
func (s StrategyID) Family() Family {
	id := string(s)
	if i := strings.IndexByte(id, '-'); i >= 0 {
		return Family(id[:i])
	}
	return Family(id)
}

// Variant returns the part after the family, or "" when absent.
func (s StrategyID) Variant() string {
	id := string(s)
	if i := strings.IndexByte(id, '-'); i >= 0 {
		return id[i+1:]
	}
	return ""
}

func (s StrategyID) String() string { return string(s) }

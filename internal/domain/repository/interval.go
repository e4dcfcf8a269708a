package repository

import (
	"strings"
	"time"
)

// Interval represents a candle resolution.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

var intervalDurations = map[Interval]time.Duration{
	Interval1m:  time.Minute,
	Interval5m:  5 * time.Minute,
	Interval15m: 15 * time.Minute,
	Interval30m: 30 * time.Minute,
	Interval1h:  time.Hour,
	Interval4h:  4 * time.Hour,
	Interval1d:  24 * time.Hour,
}

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	_, ok := intervalDurations[iv]
	return ok
}

// DefaultInterval returns the default interval.
func DefaultInterval() Interval { return Interval1m }

// Duration returns the length of one candle, or 0 for unknown intervals.
func (iv Interval) Duration() time.Duration { return intervalDurations[iv] }

// NormalizeInterval converts raw strings such as "30min", "1H" or "15m"
// to a valid interval (or the default).
func NormalizeInterval(s string) Interval {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultInterval()
	}
	s = strings.TrimSuffix(s, "in")
	s = strings.TrimSuffix(s, "ins")
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}

// CandlesFor returns how many candles of iv fit into d.
func CandlesFor(d time.Duration, iv Interval) int {
	step := iv.Duration()
	if step <= 0 {
		return 0
	}
	return int(d / step)
}

package models

import "time"

// Candle represents one OHLCV sample for a fixed interval.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is a candle sequence ordered by timestamp ascending.
type Series []Candle

func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Volume
	}
	return out
}

// Last returns the most recent candle.
func (s Series) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// MinLow and MaxHigh scan the whole series. Both return 0 for an empty series.
func (s Series) MinLow() float64 {
	if len(s) == 0 {
		return 0
	}
	m := s[0].Low
	for _, c := range s[1:] {
		if c.Low < m {
			m = c.Low
		}
	}
	return m
}

func (s Series) MaxHigh() float64 {
	if len(s) == 0 {
		return 0
	}
	m := s[0].High
	for _, c := range s[1:] {
		if c.High > m {
			m = c.High
		}
	}
	return m
}

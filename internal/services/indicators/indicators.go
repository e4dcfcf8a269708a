// Package indicators computes technical indicators over ordered price and
// volume series. Every function returns a series parallel to its input;
// indices where the indicator is not yet defined hold NaN.
package indicators

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPeriod = errors.New("indicators: invalid period")

func checkPeriod(name string, period int) error {
	if period <= 0 {
		return fmt.Errorf("%w: %s must be > 0, got %d", ErrInvalidPeriod, name, period)
	}
	return nil
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Defined reports whether v holds a computed value.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

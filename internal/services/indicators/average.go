package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// SMA is the arithmetic mean over the trailing `period` samples.
func SMA(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod("period", period); err != nil {
		return nil, err
	}
	out := nanSeries(len(prices))
	if len(prices) < period {
		return out, nil
	}
	raw := talib.Sma(prices, period)
	copy(out[period-1:], raw[period-1:])
	return out, nil
}

// EMA smooths with factor 2/(period+1). The first defined value equals
// the first defined price; leading NaNs are carried through.
func EMA(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod("period", period); err != nil {
		return nil, err
	}
	out := nanSeries(len(prices))
	alpha := 2.0 / float64(period+1)
	seeded := false
	prev := 0.0
	for i, p := range prices {
		if math.IsNaN(p) {
			continue
		}
		if !seeded {
			prev = p
			seeded = true
		} else {
			prev = alpha*p + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out, nil
}

// MACD returns the macd line, its signal line and the histogram.
func MACD(prices []float64, fast, slow, signal int) (macd, sig, hist []float64, err error) {
	if err = checkPeriod("fast", fast); err != nil {
		return nil, nil, nil, err
	}
	if err = checkPeriod("slow", slow); err != nil {
		return nil, nil, nil, err
	}
	if err = checkPeriod("signal", signal); err != nil {
		return nil, nil, nil, err
	}

	fastEMA, _ := EMA(prices, fast)
	slowEMA, _ := EMA(prices, slow)
	macd = make([]float64, len(prices))
	for i := range prices {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig, _ = EMA(macd, signal)
	hist = make([]float64, len(prices))
	for i := range prices {
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist, nil
}

package indicators

// RSI averages up-moves and down-moves over the trailing `period` price
// changes. The first `period` indices are NaN.
//
// A window without losses yields 100; a window with neither gains nor
// losses (flat prices) yields 50.
func RSI(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod("period", period); err != nil {
		return nil, err
	}
	out := nanSeries(len(prices))
	for i := period; i < len(prices); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			d := prices[j] - prices[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50
	case avgLoss == 0:
		return 100
	}
	v := 100 - 100/(1+avgGain/avgLoss)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package indicators

import (
	talib "github.com/markcheno/go-talib"
)

// Bands holds Bollinger band series parallel to the input prices.
type Bands struct {
	Middle    []float64
	Upper     []float64
	Lower     []float64
	Bandwidth []float64 // (upper-lower)/middle*100
}

// BollingerBands uses the SMA as middle band and the trailing population
// standard deviation scaled by stdDev as band width.
func BollingerBands(prices []float64, period int, stdDev float64) (Bands, error) {
	middle, err := SMA(prices, period)
	if err != nil {
		return Bands{}, err
	}
	n := len(prices)
	b := Bands{
		Middle:    middle,
		Upper:     nanSeries(n),
		Lower:     nanSeries(n),
		Bandwidth: nanSeries(n),
	}
	if n < period {
		return b, nil
	}

	sd := talib.StdDev(prices, period, 1.0)
	for i := period - 1; i < n; i++ {
		band := stdDev * sd[i]
		b.Upper[i] = middle[i] + band
		b.Lower[i] = middle[i] - band
		if middle[i] != 0 {
			b.Bandwidth[i] = (b.Upper[i] - b.Lower[i]) / middle[i] * 100
		} else {
			b.Bandwidth[i] = 0
		}
	}
	return b, nil
}

// BandPosition places price within the bands on [0,1]: 0 at the lower
// band, 1 at the upper band. Collapsed bands yield exactly 0.5.
func BandPosition(price, upper, lower float64) float64 {
	if upper == lower {
		return 0.5
	}
	pos := (price - lower) / (upper - lower)
	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}

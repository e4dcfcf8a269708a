package strategies

import (
	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/services/indicators"
)

// MACDCrossover trades sign changes of the MACD histogram.
type MACDCrossover struct{}

func (MACDCrossover) Family() models.Family { return models.FamilyMACD }

func (MACDCrossover) Defaults() models.Params {
	return models.Params{"fast": 12, "slow": 26, "signal": 9}
}

func (MACDCrossover) Ranges() models.Ranges {
	return models.Ranges{
		"fast":   {8, 10, 12, 14, 16},
		"slow":   {20, 23, 26, 29, 32},
		"signal": {7, 8, 9, 10, 11},
	}
}

func (MACDCrossover) Lookback(p models.Params) int {
	return p.Int("slow", 26) + p.Int("signal", 9)
}

func (e MACDCrossover) Signals(s models.Series, p models.Params, from int) ([]models.Signal, error) {
	macd, signal, hist, err := indicators.MACD(s.Closes(), p.Int("fast", 12), p.Int("slow", 26), p.Int("signal", 9))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}

	var out []models.Signal
	for i := startAt(from, 1); i < len(s); i++ {
		if !defined(hist[i-1], hist[i]) {
			continue
		}
		meta := map[string]interface{}{"macd": macd[i], "signal": signal[i], "histogram": hist[i]}
		if hist[i-1] <= 0 && hist[i] > 0 {
			out = append(out, newSignal(s[i], models.ActionBuy, 1, meta))
		} else if hist[i-1] >= 0 && hist[i] < 0 {
			out = append(out, newSignal(s[i], models.ActionSell, 1, meta))
		}
	}
	return out, nil
}

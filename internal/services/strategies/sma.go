package strategies

import (
	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/services/indicators"
)

// SMACrossover trades crossovers of a short SMA through a long SMA.
type SMACrossover struct{}

func (SMACrossover) Family() models.Family { return models.FamilySMA }

func (SMACrossover) Defaults() models.Params {
	return models.Params{"short_period": 10, "long_period": 30}
}

func (SMACrossover) Ranges() models.Ranges {
	return models.Ranges{
		"short_period": {5, 8, 10, 12, 15},
		"long_period":  {20, 25, 30, 35, 40},
	}
}

func (SMACrossover) Lookback(p models.Params) int { return p.Int("long_period", 30) }

func (e SMACrossover) Signals(s models.Series, p models.Params, from int) ([]models.Signal, error) {
	closes := s.Closes()
	short, err := indicators.SMA(closes, p.Int("short_period", 10))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}
	long, err := indicators.SMA(closes, p.Int("long_period", 30))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}

	var out []models.Signal
	for i := startAt(from, 1); i < len(s); i++ {
		meta := map[string]interface{}{"sma_short": short[i], "sma_long": long[i]}
		if crossedAbove(short[i-1], long[i-1], short[i], long[i]) {
			out = append(out, newSignal(s[i], models.ActionBuy, 1, meta))
		} else if crossedBelow(short[i-1], long[i-1], short[i], long[i]) {
			out = append(out, newSignal(s[i], models.ActionSell, 1, meta))
		}
	}
	return out, nil
}

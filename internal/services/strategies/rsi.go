package strategies

import (
	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/services/indicators"
)

// RSI buys when RSI <= oversold and sells when RSI >= overbought, candle
// by candle.
type RSI struct{}

func (RSI) Family() models.Family { return models.FamilyRSI }

func (RSI) Defaults() models.Params {
	return models.Params{"period": 14, "oversold": 30, "overbought": 70}
}

func (RSI) Ranges() models.Ranges {
	return models.Ranges{
		"period":     {10, 12, 14, 16, 18, 20},
		"oversold":   {25, 28, 30, 32, 35},
		"overbought": {65, 68, 70, 72, 75},
	}
}

func (RSI) Lookback(p models.Params) int { return p.Int("period", 14) + 1 }

func (e RSI) Signals(s models.Series, p models.Params, from int) ([]models.Signal, error) {
	oversold := p.Float("oversold", 30)
	overbought := p.Float("overbought", 70)

	rsi, err := indicators.RSI(s.Closes(), p.Int("period", 14))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}

	var out []models.Signal
	for i := startAt(from, 0); i < len(s); i++ {
		if !indicators.Defined(rsi[i]) {
			continue
		}
		meta := map[string]interface{}{"rsi": rsi[i]}
		switch {
		case rsi[i] <= oversold:
			out = append(out, newSignal(s[i], models.ActionBuy, 1, meta))
		case rsi[i] >= overbought:
			out = append(out, newSignal(s[i], models.ActionSell, 1, meta))
		}
	}
	return out, nil
}

package strategies

import (
	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/services/indicators"
)

// Scalping trades fast/slow EMA crossovers confirmed by a neutral RSI and
// a volume spike on the crossing candle.
type Scalping struct{}

func (Scalping) Family() models.Family { return models.FamilyScalping }

func (Scalping) Defaults() models.Params {
	return models.Params{
		"fast_ema":          5,
		"slow_ema":          13,
		"rsi_period":        7,
		"rsi_oversold":      30,
		"rsi_overbought":    70,
		"volume_multiplier": 1.5,
	}
}

func (Scalping) Ranges() models.Ranges {
	return models.Ranges{
		"fast_ema":          {3, 5, 8},
		"slow_ema":          {10, 13, 15, 20},
		"rsi_period":        {5, 7, 9},
		"rsi_oversold":      {25, 30, 35},
		"rsi_overbought":    {65, 70, 75},
		"volume_multiplier": {1.3, 1.5, 1.8, 2.0},
	}
}

func (Scalping) Lookback(p models.Params) int {
	need := p.Int("slow_ema", 13)
	if r := p.Int("rsi_period", 7) + 1; r > need {
		need = r
	}
	if need < indicators.DefaultVolumeWindow {
		need = indicators.DefaultVolumeWindow
	}
	return need
}

func (e Scalping) Signals(s models.Series, p models.Params, from int) ([]models.Signal, error) {
	closes := s.Closes()
	fast, err := indicators.EMA(closes, p.Int("fast_ema", 5))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}
	slow, err := indicators.EMA(closes, p.Int("slow_ema", 13))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}
	rsi, err := indicators.RSI(closes, p.Int("rsi_period", 7))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}
	spikes, err := indicators.VolumeSpike(s.Volumes(), p.Float("volume_multiplier", 1.5), indicators.DefaultVolumeWindow)
	if err != nil {
		return nil, invalid(e.Family(), err)
	}
	oversold := p.Float("rsi_oversold", 30)
	overbought := p.Float("rsi_overbought", 70)

	var out []models.Signal
	for i := startAt(from, 1); i < len(s); i++ {
		if !spikes[i] || !indicators.Defined(rsi[i]) || rsi[i] <= oversold || rsi[i] >= overbought {
			continue
		}
		meta := map[string]interface{}{
			"fast_ema":     fast[i],
			"slow_ema":     slow[i],
			"rsi":          rsi[i],
			"volume_spike": true,
		}
		if crossedAbove(fast[i-1], slow[i-1], fast[i], slow[i]) {
			out = append(out, newSignal(s[i], models.ActionBuy, 1, meta))
		} else if crossedBelow(fast[i-1], slow[i-1], fast[i], slow[i]) {
			out = append(out, newSignal(s[i], models.ActionSell, 1, meta))
		}
	}
	return out, nil
}

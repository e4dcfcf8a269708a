package strategies

import (
	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/services/levels"
)

const defaultProximityPercent = 0.5

// SupportResistance buys near the nearest support below the close and sells
// near the nearest resistance above it. In a backtest, levels at candle i
// are detected on the trailing lookback_periods candles ending at i.
type SupportResistance struct{}

func (SupportResistance) Family() models.Family { return models.FamilySupportResistance }

func (SupportResistance) Defaults() models.Params {
	return models.Params{
		"lookback_periods":     100,
		"min_touches":          3,
		"tolerance_percent":    1,
		"min_distance_percent": 2,
		"proximity_percent":    defaultProximityPercent,
	}
}

func (SupportResistance) Ranges() models.Ranges {
	return models.Ranges{
		"lookback_periods":     {50, 100, 150},
		"min_touches":          {2, 3, 4},
		"tolerance_percent":    {0.5, 1, 1.5},
		"min_distance_percent": {1, 2, 3},
	}
}

func (SupportResistance) Lookback(p models.Params) int { return p.Int("lookback_periods", 100) }

func (e SupportResistance) Signals(s models.Series, p models.Params, from int) ([]models.Signal, error) {
	return e.scan(s, p, from, false)
}

// LiveSignals evaluates the last candle against levels detected on the
// whole series, so a live check sees every pivot it fetched rather than
// only the trailing lookback_periods candles.
func (e SupportResistance) LiveSignals(s models.Series, p models.Params) ([]models.Signal, error) {
	return e.scan(s, p, len(s)-1, true)
}

func (e SupportResistance) scan(s models.Series, p models.Params, from int, fullSeries bool) ([]models.Signal, error) {
	lookback := e.Lookback(p)
	if lookback <= 2*levels.DefaultPivotWindow {
		return nil, invalid(e.Family(), errLookbackTooShort)
	}
	cfg := levels.DefaultConfig()
	cfg.MinTouches = p.Int("min_touches", cfg.MinTouches)
	cfg.TolerancePercent = p.Float("tolerance_percent", cfg.TolerancePercent)
	cfg.MinDistancePercent = p.Float("min_distance_percent", cfg.MinDistancePercent)
	proximity := p.Float("proximity_percent", defaultProximityPercent)

	var out []models.Signal
	for i := startAt(from, lookback-1); i < len(s); i++ {
		first := i + 1 - lookback
		if fullSeries {
			first = 0
		}
		lv := levels.Detect(s[first:i+1], cfg)
		if lv.Empty() {
			continue
		}
		price := s[i].Close
		near := levels.FindNearest(price, lv)

		meta := map[string]interface{}{
			"resistance_levels": len(lv.Resistance),
			"support_levels":    len(lv.Support),
		}
		var (
			action models.Action
			dist   float64
		)
		if near.HasSupport {
			meta["nearest_support"] = near.Support
			if d := near.DistanceToSupport(price); d <= proximity {
				action, dist = models.ActionBuy, d
			}
		}
		if near.HasResistance {
			meta["nearest_resistance"] = near.Resistance
			if d := near.DistanceToResistance(price); d <= proximity {
				action, dist = models.ActionSell, d
			}
		}
		if action == "" {
			continue
		}
		meta["distance_percent"] = dist
		out = append(out, newSignal(s[i], action, levelStrength(dist), meta))
	}
	return out, nil
}

// levelStrength is 1 at the level and decays to 0.6 at 0.8% away.
func levelStrength(distancePercent float64) float64 {
	strength := 1 - distancePercent/2
	if strength < 0.6 {
		strength = 0.6
	}
	return clamp01(strength)
}

package strategies

import (
	"math"

	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/services/indicators"
)

const (
	lowerZone          = 0.2
	upperZone          = 0.8
	highVolatilityBand = 4.0
)

// BollingerTouch buys near the lower band and sells near the upper band.
type BollingerTouch struct{}

func (BollingerTouch) Family() models.Family { return models.FamilyBollinger }

func (BollingerTouch) Defaults() models.Params {
	return models.Params{"period": 20, "std_dev": 2, "touch_threshold": 0.5}
}

func (BollingerTouch) Ranges() models.Ranges {
	return models.Ranges{
		"period":          {14, 16, 18, 20, 22},
		"std_dev":         {1.5, 2, 2.5},
		"touch_threshold": {0.3, 0.5, 0.8, 1.0},
	}
}

func (BollingerTouch) Lookback(p models.Params) int { return p.Int("period", 20) }

func (e BollingerTouch) Signals(s models.Series, p models.Params, from int) ([]models.Signal, error) {
	touch := p.Float("touch_threshold", 0.5)
	bands, err := indicators.BollingerBands(s.Closes(), p.Int("period", 20), p.Float("std_dev", 2))
	if err != nil {
		return nil, invalid(e.Family(), err)
	}

	var out []models.Signal
	for i := startAt(from, 0); i < len(s); i++ {
		upper, lower := bands.Upper[i], bands.Lower[i]
		if !defined(upper, lower) {
			continue
		}
		price := s[i].Close
		pos := indicators.BandPosition(price, upper, lower)
		// A band at or below zero has no meaningful percent distance.
		toLower, toUpper := math.Inf(1), math.Inf(1)
		if lower > 0 {
			toLower = math.Abs(price-lower) / lower * 100
		}
		if upper > 0 {
			toUpper = math.Abs(upper-price) / upper * 100
		}

		meta := map[string]interface{}{
			"bb_upper":    upper,
			"bb_middle":   bands.Middle[i],
			"bb_lower":    lower,
			"bb_position": pos,
			"bandwidth":   bands.Bandwidth[i],
		}
		switch {
		case pos <= lowerZone || toLower <= touch:
			strength := bandStrength(1-pos, toLower <= touch, bands.Bandwidth[i])
			out = append(out, newSignal(s[i], models.ActionBuy, strength, meta))
		case pos >= upperZone || toUpper <= touch:
			strength := bandStrength(pos, toUpper <= touch, bands.Bandwidth[i])
			out = append(out, newSignal(s[i], models.ActionSell, strength, meta))
		}
	}
	return out, nil
}

// bandStrength scores a band signal from the position strength, whether the
// price touches the band and the band width.
func bandStrength(posStrength float64, touching bool, bandwidth float64) float64 {
	strength := 0.6 + posStrength*0.2
	if touching {
		strength = 0.85 + posStrength*0.15
	}
	if bandwidth > highVolatilityBand {
		strength += 0.1
	}
	return clamp01(strength)
}

package strategies

import (
	"ParamSweep/internal/domain/models"
)

const rangeLookback = 50

// RangeEntry buys the first time the close enters a band just above the
// window low and sells once it leaves the band on either side.
type RangeEntry struct{}

func (RangeEntry) Family() models.Family { return models.FamilyRange }

func (RangeEntry) Defaults() models.Params {
	return models.Params{"long_offset": -1, "tolerance": 2}
}

func (RangeEntry) Ranges() models.Ranges {
	return models.Ranges{
		"long_offset": {-2, -1.5, -1, -0.5, 0},
		"tolerance":   {1, 1.5, 2, 2.5, 3},
	}
}

func (RangeEntry) Lookback(models.Params) int { return rangeLookback }

func (RangeEntry) Signals(s models.Series, p models.Params, from int) ([]models.Signal, error) {
	if len(s) == 0 {
		return nil, nil
	}
	offset := p.Float("long_offset", -1)
	tolerance := p.Float("tolerance", 2)

	periodLow, periodHigh := s.MinLow(), s.MaxHigh()
	bandLow := periodLow * (1 + offset/100)
	bandHigh := periodLow * (1 + offset/100 + tolerance/100)
	meta := func() map[string]interface{} {
		return map[string]interface{}{
			"period_low":  periodLow,
			"period_high": periodHigh,
			"range_low":   bandLow,
			"range_high":  bandHigh,
		}
	}

	var out []models.Signal
	inRange := false
	for i, c := range s {
		price := c.Close
		var action models.Action
		switch {
		case !inRange && price >= bandLow && price <= bandHigh:
			action, inRange = models.ActionBuy, true
		case inRange && (price > bandHigh || price < bandLow):
			action, inRange = models.ActionSell, false
		default:
			continue
		}
		if i >= from {
			out = append(out, newSignal(c, action, 1, meta()))
		}
	}
	return out, nil
}

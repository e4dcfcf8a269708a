package strategies

import (
	"fmt"
	"sort"

	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/domain/repository"
)

// Registry maps families to evaluators.
type Registry struct {
	evaluators map[models.Family]Evaluator
}

func NewRegistry(evs ...Evaluator) *Registry {
	r := &Registry{evaluators: make(map[models.Family]Evaluator, len(evs))}
	for _, ev := range evs {
		r.evaluators[ev.Family()] = ev
	}
	return r
}

// DefaultRegistry holds every built-in family.
func DefaultRegistry() *Registry {
	return NewRegistry(
		RSI{},
		SMACrossover{},
		RangeEntry{},
		Scalping{},
		MACDCrossover{},
		BollingerTouch{},
		SupportResistance{},
	)
}

func (r *Registry) Get(f models.Family) (Evaluator, error) {
	ev, ok := r.evaluators[f]
	if !ok {
		return nil, fmt.Errorf("%w: family %q", repository.ErrUnknownStrategy, f)
	}
	return ev, nil
}

func (r *Registry) Families() []models.Family {
	out := make([]models.Family, 0, len(r.evaluators))
	for f := range r.evaluators {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Definition binds a strategy id to its family, candle interval and tuning.
type Definition struct {
	ID       models.StrategyID   `json:"id"`
	Family   models.Family       `json:"family"`
	Interval repository.Interval `json:"interval"`
	Ranges   models.Ranges       `json:"ranges"`
	Defaults models.Params       `json:"defaults"`
}

// Catalog resolves strategy ids. Ids not explicitly defined are derived
// from "<family>-<interval>" using the family's built-in tuning.
type Catalog struct {
	registry *Registry
	defs     map[models.StrategyID]Definition
}

// BuiltinStrategies are the ids available without configuration.
var BuiltinStrategies = []models.StrategyID{
	"rsi-1min",
	"rsi-1h",
	"sma-5min",
	"range-24h-low",
	"scalping-1min",
	"macd-15min",
	"bollinger_bands-30min",
	"support_resistance-1h",
}

func NewCatalog(reg *Registry, defs ...Definition) *Catalog {
	c := &Catalog{registry: reg, defs: make(map[models.StrategyID]Definition)}
	for _, id := range BuiltinStrategies {
		if d, err := c.derive(id); err == nil {
			c.defs[id] = d
		}
	}
	for _, d := range defs {
		c.Add(d)
	}
	return c
}

// Add registers or overrides a definition. Missing ranges or defaults are
// filled from the family.
func (c *Catalog) Add(d Definition) {
	base, err := c.derive(d.ID)
	if err != nil {
		return
	}
	if d.Family == "" {
		d.Family = base.Family
	}
	if d.Interval == "" {
		d.Interval = base.Interval
	}
	if len(d.Ranges) == 0 {
		d.Ranges = base.Ranges
	}
	d.Defaults = base.Defaults.Merge(d.Defaults)
	c.defs[d.ID] = d
}

// Resolve returns the definition and evaluator for id.
func (c *Catalog) Resolve(id models.StrategyID) (Definition, Evaluator, error) {
	d, ok := c.defs[id]
	if !ok {
		var err error
		if d, err = c.derive(id); err != nil {
			return Definition{}, nil, err
		}
	}
	ev, err := c.registry.Get(d.Family)
	if err != nil {
		return Definition{}, nil, err
	}
	return d, ev, nil
}

// Definitions lists the known strategies sorted by id.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) derive(id models.StrategyID) (Definition, error) {
	ev, err := c.registry.Get(id.Family())
	if err != nil {
		return Definition{}, fmt.Errorf("%w: %q", repository.ErrUnknownStrategy, id)
	}
	return Definition{
		ID:       id,
		Family:   ev.Family(),
		Interval: repository.NormalizeInterval(id.Variant()),
		Ranges:   ev.Ranges(),
		Defaults: ev.Defaults(),
	}, nil
}

// Families lists the registered strategy families.
func (c *Catalog) Families() []models.Family {
	return c.registry.Families()
}

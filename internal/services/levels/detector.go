// Package levels detects support and resistance price levels from pivot
// highs and lows.
package levels

import (
	"math"
	"sort"

	"ParamSweep/internal/domain/models"
)

const DefaultPivotWindow = 5

// Config controls level detection.
type Config struct {
	Window             int     // pivot neighbourhood on each side
	MinTouches         int     // minimum pivots per cluster
	TolerancePercent   float64 // cluster join distance, % of the cluster mean
	MinDistancePercent float64 // minimum spacing between kept levels
}

func DefaultConfig() Config {
	return Config{
		Window:             DefaultPivotWindow,
		MinTouches:         3,
		TolerancePercent:   1.0,
		MinDistancePercent: 2.0,
	}
}

// Levels are the kept resistance (from highs) and support (from lows) levels.
type Levels struct {
	Resistance []float64 `json:"resistance"`
	Support    []float64 `json:"support"`
}

func (l Levels) Empty() bool { return len(l.Resistance) == 0 && len(l.Support) == 0 }

// FindPivots returns pivot highs and lows in chronological order. A high is
// a pivot when no other high within `window` candles on either side is >=
// it; lows mirror that with <=. The first and last `window` candles are
// never pivots.
func FindPivots(s models.Series, window int) (highs, lows []float64) {
	if window <= 0 {
		window = DefaultPivotWindow
	}
	for i := window; i < len(s)-window; i++ {
		hi, lo := s[i].High, s[i].Low
		isHigh, isLow := true, true
		for j := i - window; j <= i+window && (isHigh || isLow); j++ {
			if j == i {
				continue
			}
			if s[j].High >= hi {
				isHigh = false
			}
			if s[j].Low <= lo {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, hi)
		}
		if isLow {
			lows = append(lows, lo)
		}
	}
	return highs, lows
}

// Cluster groups sorted levels: a level joins the last cluster when it is
// within tolerancePercent of that cluster's running mean. Clusters with
// fewer than minTouches members are dropped; each kept cluster yields its mean.
func Cluster(levels []float64, tolerancePercent float64, minTouches int) []float64 {
	if len(levels) == 0 {
		return nil
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	type cluster struct {
		sum   float64
		count int
	}
	var clusters []cluster
	for _, lv := range sorted {
		if n := len(clusters); n > 0 {
			last := &clusters[n-1]
			mean := last.sum / float64(last.count)
			if math.Abs(lv-mean) <= mean*tolerancePercent/100 {
				last.sum += lv
				last.count++
				continue
			}
		}
		clusters = append(clusters, cluster{sum: lv, count: 1})
	}

	out := make([]float64, 0, len(clusters))
	for _, c := range clusters {
		if c.count >= minTouches {
			out = append(out, c.sum/float64(c.count))
		}
	}
	return out
}

// FilterByDistance keeps a level only if it is at least minDistancePercent
// away from every previously kept level. Earlier levels win.
func FilterByDistance(levels []float64, minDistancePercent float64) []float64 {
	var kept []float64
	for _, lv := range levels {
		ok := true
		for _, k := range kept {
			if math.Abs(lv-k)/k*100 < minDistancePercent {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, lv)
		}
	}
	return kept
}

// Detect runs pivot detection, clustering and distance filtering.
func Detect(s models.Series, cfg Config) Levels {
	highs, lows := FindPivots(s, cfg.Window)
	return Levels{
		Resistance: FilterByDistance(Cluster(highs, cfg.TolerancePercent, cfg.MinTouches), cfg.MinDistancePercent),
		Support:    FilterByDistance(Cluster(lows, cfg.TolerancePercent, cfg.MinTouches), cfg.MinDistancePercent),
	}
}

// Nearest holds the closest levels around a price.
type Nearest struct {
	Resistance    float64
	HasResistance bool
	Support       float64
	HasSupport    bool
}

// FindNearest returns the lowest resistance strictly above price and the
// highest support strictly below it.
func FindNearest(price float64, l Levels) Nearest {
	var n Nearest
	for _, r := range l.Resistance {
		if r > price && (!n.HasResistance || r < n.Resistance) {
			n.Resistance, n.HasResistance = r, true
		}
	}
	for _, s := range l.Support {
		if s < price && (!n.HasSupport || s > n.Support) {
			n.Support, n.HasSupport = s, true
		}
	}
	return n
}

// DistanceToSupport is the percent distance from support up to price.
func (n Nearest) DistanceToSupport(price float64) float64 {
	return (price - n.Support) / n.Support * 100
}

// DistanceToResistance is the percent distance from price up to resistance.
func (n Nearest) DistanceToResistance(price float64) float64 {
	return (n.Resistance - price) / n.Resistance * 100
}

package levels

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"ParamSweep/internal/domain/models"
)

func seriesFrom(highs, lows []float64) models.Series {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.Series, len(highs))
	for i := range highs {
		s[i] = models.Candle{
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
			High:      highs[i],
			Low:       lows[i],
			Close:     (highs[i] + lows[i]) / 2,
		}
	}
	return s
}

func TestFindPivots(t *testing.T) {
	highs := []float64{1, 2, 3, 4, 5, 10, 5, 4, 3, 2, 1, 1}
	lows := []float64{5, 4, 3, 2, 1.5, 0.5, 1.5, 2, 3, 4, 5, 5}
	h, l := FindPivots(seriesFrom(highs, lows), 5)
	if len(h) != 1 || h[0] != 10 {
		t.Fatalf("unexpected highs %v", h)
	}
	if len(l) != 1 || l[0] != 0.5 {
		t.Fatalf("unexpected lows %v", l)
	}
}

func TestFindPivotsEqualNeighbourIsNotPivot(t *testing.T) {
	highs := []float64{1, 1, 1, 9, 1, 9, 1, 1, 1}
	lows := make([]float64, len(highs))
	h, _ := FindPivots(seriesFrom(highs, lows), 2)
	if len(h) != 0 {
		t.Fatalf("expected no pivots with equal neighbour highs, got %v", h)
	}
}

func TestCluster(t *testing.T) {
	levels := []float64{100.5, 100, 99.8, 150, 110, 110.3, 110.6}
	got := Cluster(levels, 1, 3)
	if len(got) != 2 {
		t.Fatalf("expected 2 clusters, got %v", got)
	}
	if math.Abs(got[0]-(99.8+100+100.5)/3) > 1e-9 {
		t.Fatalf("unexpected first cluster mean %v", got[0])
	}
	if math.Abs(got[1]-(110+110.3+110.6)/3) > 1e-9 {
		t.Fatalf("unexpected second cluster mean %v", got[1])
	}
	if Cluster(nil, 1, 1) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestFilterByDistanceFirstSeenWins(t *testing.T) {
	got := FilterByDistance([]float64{100, 101, 103, 99}, 2)
	want := []float64{100, 103}
	if len(got) != len(want) {
		t.Fatalf("unexpected levels %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected levels %v", got)
		}
	}
}

func TestFindNearest(t *testing.T) {
	l := Levels{Resistance: []float64{120, 105, 100}, Support: []float64{80, 95, 100}}
	n := FindNearest(100, l)
	if !n.HasResistance || n.Resistance != 105 {
		t.Fatalf("unexpected resistance %+v", n)
	}
	if !n.HasSupport || n.Support != 95 {
		t.Fatalf("unexpected support %+v", n)
	}
	n = FindNearest(200, l)
	if n.HasResistance {
		t.Fatalf("expected no resistance above 200")
	}
}

func TestDetectProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for run := 0; run < 50; run++ {
		n := 150
		highs := make([]float64, n)
		lows := make([]float64, n)
		p := 100.0
		for i := 0; i < n; i++ {
			p += rng.NormFloat64() * 1.5
			if p < 10 {
				p = 10
			}
			highs[i] = p + rng.Float64()
			lows[i] = p - rng.Float64()
		}
		s := seriesFrom(highs, lows)
		cfg := Config{Window: 5, MinTouches: 1 + rng.Intn(3), TolerancePercent: 1, MinDistancePercent: 2}
		lv := Detect(s, cfg)

		for _, set := range [][]float64{lv.Resistance, lv.Support} {
			for i := range set {
				for j := 0; j < i; j++ {
					if math.Abs(set[i]-set[j])/set[j]*100 < cfg.MinDistancePercent {
						t.Fatalf("run %d: levels %v and %v too close", run, set[j], set[i])
					}
				}
			}
		}

		price := s[len(s)-1].Close
		near := FindNearest(price, lv)
		if near.HasResistance && near.Resistance <= price {
			t.Fatalf("run %d: resistance %v not above %v", run, near.Resistance, price)
		}
		if near.HasSupport && near.Support >= price {
			t.Fatalf("run %d: support %v not below %v", run, near.Support, price)
		}
	}
}

func TestDetectDefaultConfig(t *testing.T) {
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	if lv := Detect(seriesFrom(flat, flat), DefaultConfig()); !lv.Empty() {
		t.Fatalf("expected no levels on a flat series, got %+v", lv)
	}

	// Four 12-candle cycles between 100 and 110.
	var prices []float64
	for c := 0; c < 4; c++ {
		for k := 0; k < 12; k++ {
			d := k
			if k > 6 {
				d = 12 - k
			}
			prices = append(prices, 100+float64(d)*10/6)
		}
	}
	lv := Detect(seriesFrom(prices, prices), DefaultConfig())
	if lv.Empty() {
		t.Fatal("expected levels on a repeating cycle")
	}
	if len(lv.Resistance) != 1 || math.Abs(lv.Resistance[0]-110) > 1e-9 {
		t.Fatalf("unexpected resistance %v", lv.Resistance)
	}
}

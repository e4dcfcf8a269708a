package indicators

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func rising(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestRSIUndefinedPrefixAndBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	series := map[string][]float64{
		"rising":  rising(60, 100, 1),
		"falling": rising(60, 200, -1),
		"random":  nil,
	}
	random := make([]float64, 200)
	p := 100.0
	for i := range random {
		p += rng.NormFloat64()
		random[i] = p
	}
	series["random"] = random

	for name, prices := range series {
		for _, period := range []int{2, 5, 14} {
			rsi, err := RSI(prices, period)
			if err != nil {
				t.Fatalf("%s: unexpected error %v", name, err)
			}
			for i, v := range rsi {
				if i < period {
					if !math.IsNaN(v) {
						t.Fatalf("%s period=%d: index %d should be undefined, got %v", name, period, i, v)
					}
					continue
				}
				if math.IsNaN(v) || v < 0 || v > 100 {
					t.Fatalf("%s period=%d: index %d out of range: %v", name, period, i, v)
				}
			}
		}
	}
}

func TestRSIDegenerateWindows(t *testing.T) {
	rsi, _ := RSI(rising(20, 1, 1), 5)
	if rsi[10] != 100 {
		t.Fatalf("expected 100 without losses, got %v", rsi[10])
	}
	flat := []float64{5, 5, 5, 5, 5, 5}
	rsi, _ = RSI(flat, 3)
	if rsi[4] != 50 {
		t.Fatalf("expected 50 for flat window, got %v", rsi[4])
	}
	rsi, _ = RSI(rising(20, 100, -1), 5)
	if rsi[10] != 0 {
		t.Fatalf("expected 0 without gains, got %v", rsi[10])
	}
}

func TestRSIValue(t *testing.T) {
	// changes: +2, -1, +1, -2 -> gains 3, losses 3 over 4 => 50
	prices := []float64{10, 12, 11, 12, 10}
	rsi, _ := RSI(prices, 4)
	if !near(rsi[4], 50) {
		t.Fatalf("expected 50, got %v", rsi[4])
	}
	// changes: +3, -1 -> avg gain 1.5, avg loss 0.5, rs 3 => 75
	rsi, _ = RSI([]float64{10, 13, 12}, 2)
	if !near(rsi[2], 75) {
		t.Fatalf("expected 75, got %v", rsi[2])
	}
}

func TestInvalidPeriod(t *testing.T) {
	if _, err := RSI([]float64{1, 2}, 0); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := SMA([]float64{1, 2}, -1); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, _, _, err := MACD([]float64{1, 2}, 12, 0, 9); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestSMA(t *testing.T) {
	sma, err := SMA([]float64{1, 2, 3, 4, 5, 6}, 3)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !math.IsNaN(sma[0]) || !math.IsNaN(sma[1]) {
		t.Fatalf("expected undefined prefix, got %v", sma[:2])
	}
	want := []float64{2, 3, 4, 5}
	for i, w := range want {
		if !near(sma[i+2], w) {
			t.Fatalf("index %d: want %v got %v", i+2, w, sma[i+2])
		}
	}

	short, _ := SMA([]float64{1, 2}, 5)
	for _, v := range short {
		if !math.IsNaN(v) {
			t.Fatalf("expected all undefined for short input")
		}
	}
}

func TestEMASeededWithFirstPrice(t *testing.T) {
	prices := []float64{10, 11, 12, 11}
	ema, _ := EMA(prices, 3)
	if ema[0] != 10 {
		t.Fatalf("expected seed 10, got %v", ema[0])
	}
	alpha := 2.0 / 4.0
	want := 10.0
	for i := 1; i < len(prices); i++ {
		want = alpha*prices[i] + (1-alpha)*want
		if !near(ema[i], want) {
			t.Fatalf("index %d: want %v got %v", i, want, ema[i])
		}
	}
}

func TestMACDHistogram(t *testing.T) {
	prices := rising(40, 100, 0.5)
	prices[20] = 90
	macd, sig, hist, err := MACD(prices, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i := range prices {
		if !near(hist[i], macd[i]-sig[i]) {
			t.Fatalf("index %d: hist != macd-signal", i)
		}
	}
	if hist[0] != 0 {
		t.Fatalf("expected zero histogram at seed, got %v", hist[0])
	}
}

func TestVolumeSpike(t *testing.T) {
	vols := make([]float64, 25)
	for i := range vols {
		vols[i] = 10
	}
	vols[22] = 30
	spikes, err := VolumeSpike(vols, 1.5, DefaultVolumeWindow)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i, s := range spikes {
		if s != (i == 22) {
			t.Fatalf("index %d: unexpected spike flag %v", i, s)
		}
	}
}

func TestBollingerPopulationStdDev(t *testing.T) {
	b, err := BollingerBands([]float64{1, 2, 3, 4, 5}, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	sd := math.Sqrt(2)
	if !near(b.Middle[4], 3) || !near(b.Upper[4], 3+2*sd) || !near(b.Lower[4], 3-2*sd) {
		t.Fatalf("unexpected bands %v %v %v", b.Middle[4], b.Upper[4], b.Lower[4])
	}
	if !near(b.Bandwidth[4], 4*sd/3*100) {
		t.Fatalf("unexpected bandwidth %v", b.Bandwidth[4])
	}
	if !math.IsNaN(b.Upper[3]) {
		t.Fatalf("expected undefined upper band before period")
	}
}

func TestBandPositionZeroVolatility(t *testing.T) {
	b, _ := BollingerBands([]float64{7, 7, 7, 7, 7}, 5, 2)
	if b.Upper[4] != b.Lower[4] {
		t.Fatalf("expected collapsed bands, got %v %v", b.Upper[4], b.Lower[4])
	}
	if pos := BandPosition(7, b.Upper[4], b.Lower[4]); pos != 0.5 {
		t.Fatalf("expected 0.5, got %v", pos)
	}
	if pos := BandPosition(9, 7, 7); pos != 0.5 {
		t.Fatalf("expected 0.5, got %v", pos)
	}
}

func TestBandPositionClamped(t *testing.T) {
	if pos := BandPosition(120, 110, 90); pos != 1 {
		t.Fatalf("expected 1, got %v", pos)
	}
	if pos := BandPosition(80, 110, 90); pos != 0 {
		t.Fatalf("expected 0, got %v", pos)
	}
	if pos := BandPosition(95, 110, 90); !near(pos, 0.25) {
		t.Fatalf("expected 0.25, got %v", pos)
	}
}

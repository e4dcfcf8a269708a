package util

import (
	"reflect"
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	got := SplitList(" BTC, eth,,SOL ,")
	want := []string{"BTC", "eth", "SOL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if SplitList("   ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestNormalizeSymbols(t *testing.T) {
	got := NormalizeSymbols([]string{"btc", " ETH ", "", "BTC", "sol"})
	want := []string{"BTC", "ETH", "SOL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAlignWindow(t *testing.T) {
	end := time.Date(2024, 10, 10, 10, 17, 42, 0, time.UTC)
	from, to := AlignWindow(end, time.Hour, 15*time.Minute)
	if !to.Equal(end) {
		t.Fatalf("end must be kept, got %v", to)
	}
	if want := time.Date(2024, 10, 10, 9, 15, 0, 0, time.UTC); !from.Equal(want) {
		t.Fatalf("expected %v, got %v", want, from)
	}
	if Minutes(90) != 90*time.Minute {
		t.Fatalf("unexpected minutes conversion")
	}
}

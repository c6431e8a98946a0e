package dataflows

import (
	"context"
	"math"
	"testing"
)

// seqRand replays vals in a loop.
type seqRand struct {
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestMockKnownSymbolsExactWithNeutralRand(t *testing.T) {
	m := NewMockProvider(&seqRand{vals: []float64{0.5}})

	cases := []struct {
		in     string
		symbol string
		price  float64
		change float64
	}{
		{"BTC", "BTC", 68500.12, 0.05},
		{"eth", "ETH", 3850.56, -0.15},
		{"SOL", "SOL", 165.23, 1.2},
		{"BINANCE:BTCUSDT", "BINANCE:BTCUSDT", 68500.12, 0.05},
	}
	for _, tc := range cases {
		snap := m.Snapshot(tc.in)
		if snap.Symbol != tc.symbol {
			t.Errorf("%s: symbol %q, want %q", tc.in, snap.Symbol, tc.symbol)
		}
		if snap.Price == nil || *snap.Price != tc.price {
			t.Errorf("%s: price %v, want %v", tc.in, snap.Price, tc.price)
		}
		if *snap.PriceChange24hPercent != tc.change {
			t.Errorf("%s: change %v, want %v", tc.in, *snap.PriceChange24hPercent, tc.change)
		}
	}
}

func TestMockBTCTwiceStaysInBand(t *testing.T) {
	m := NewMockProvider(&seqRand{vals: []float64{0, 0.999999}})
	ctx := context.Background()

	a, _ := m.Quote(ctx, "BTC")
	b, _ := m.Quote(ctx, "BTC")

	base := 68500.12
	limit := base*JitterBand + 0.01
	for _, p := range []float64{*a.Price, *b.Price} {
		if math.Abs(p-base) > limit {
			t.Fatalf("price %v outside band of %v (+/- %v)", p, base, limit)
		}
	}
	if *a.Price == *b.Price {
		t.Fatalf("expected perturbation between calls, both %v", *a.Price)
	}
	if math.Abs(*a.Price-*b.Price) > 2*limit {
		t.Fatalf("prices %v and %v are unrelated", *a.Price, *b.Price)
	}
}

func TestMockUnknownSymbol(t *testing.T) {
	m := NewMockProvider(&seqRand{vals: []float64{1.0 - 1e-9, 0.5, 0.0}})
	snap := m.Snapshot("pepe")

	if snap.Symbol != "PEPE" {
		t.Fatalf("symbol %q", snap.Symbol)
	}
	if *snap.Price != 125 {
		t.Errorf("price %v, want 125", *snap.Price)
	}
	if *snap.Volume24h != 1e8 {
		t.Errorf("volume %v, want 1e8", *snap.Volume24h)
	}
	if *snap.PriceChange24hPercent != -5 {
		t.Errorf("change %v, want -5", *snap.PriceChange24hPercent)
	}
}

func TestNewRandSourceRange(t *testing.T) {
	r := NewRandSource(42)
	for i := 0; i < 1000; i++ {
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("value %v out of [0,1)", v)
		}
	}
}

package dataflows

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/QuantumGPT/models"
)

// RandSource yields floats in [0, 1).
type RandSource interface {
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewRandSource returns a goroutine-safe source. A zero seed uses the clock.
func NewRandSource(seed uint64) RandSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// JitterBand is the relative half-width applied to known base prices.
const JitterBand = 0.0005

type mockBase struct {
	key       string
	price     float64
	volume    float64
	changePct float64
}

// matched in order against the upper-cased input
var mockBases = []mockBase{
	{key: "BTC", price: 68500.12, volume: 24000000000.34, changePct: 0.05},
	{key: "ETH", price: 3850.56, volume: 14000000000.78, changePct: -0.15},
	{key: "SOL", price: 165.23, volume: 1900000000.45, changePct: 1.2},
}

// MockProvider fabricates plausible snapshots. It never fails.
type MockProvider struct {
	rnd RandSource
}

func NewMockProvider(rnd RandSource) *MockProvider {
	if rnd == nil {
		rnd = NewRandSource(0)
	}
	return &MockProvider{rnd: rnd}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Quote(_ context.Context, symbol string) (*models.MarketSnapshot, error) {
	return m.Snapshot(symbol), nil
}

// Snapshot matches known symbols by substring so "BINANCE:BTCUSDT" maps to
// the BTC base. Exchange-qualified inputs keep their original spelling.
func (m *MockProvider) Snapshot(symbol string) *models.MarketSnapshot {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	for _, b := range mockBases {
		if !strings.Contains(upper, b.key) {
			continue
		}
		name := b.key
		if strings.Contains(upper, ":") {
			name = upper
		}
		factor := 1 + (m.rnd.Float64()-0.5)*2*JitterBand
		return &models.MarketSnapshot{
			Symbol:                name,
			Price:                 round(b.price*factor, 2),
			Volume24h:             round(b.volume*factor, 2),
			PriceChange24hPercent: models.Float(b.changePct),
		}
	}

	return &models.MarketSnapshot{
		Symbol:                upper,
		Price:                 round(100+(m.rnd.Float64()-0.5)*50, 2),
		Volume24h:             round(1e8+(m.rnd.Float64()-0.5)*5e7, 2),
		PriceChange24hPercent: round((m.rnd.Float64()-0.5)*10, 2),
	}
}

func round(v float64, places int32) *float64 {
	return models.Float(decimal.NewFromFloat(v).Round(places).InexactFloat64())
}

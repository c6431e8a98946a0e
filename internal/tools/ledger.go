package tools

import (
	"context"
	"sync"

	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/models"
)

// Ledger remembers what the market data tool returned during one flow run,
// keyed by normalized symbol.
type Ledger struct {
	mu      sync.Mutex
	calls   int
	results map[string]*models.MarketSnapshot
}

func NewLedger() *Ledger {
	return &Ledger{results: make(map[string]*models.MarketSnapshot)}
}

func (l *Ledger) Record(symbol string, snap *models.MarketSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.results[dataflows.NormalizeSymbol(symbol)] = snap
	if snap != nil && snap.Symbol != "" {
		l.results[dataflows.NormalizeSymbol(snap.Symbol)] = snap
	}
}

// Lookup returns the recorded snapshot and whether the tool was called for
// symbol at all. A called symbol may still map to a nil snapshot.
func (l *Ledger) Lookup(symbol string) (*models.MarketSnapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap, ok := l.results[dataflows.NormalizeSymbol(symbol)]
	return snap, ok
}

func (l *Ledger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type ledgerKey struct{}

func WithLedger(ctx context.Context, l *Ledger) context.Context {
	return context.WithValue(ctx, ledgerKey{}, l)
}

func LedgerFrom(ctx context.Context) *Ledger {
	l, _ := ctx.Value(ledgerKey{}).(*Ledger)
	return l
}

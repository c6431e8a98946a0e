package dataflows

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/dyike/QuantumGPT/models"
)

// Service is the market data lookup. Live provider failures are logged and
// replaced by mock data so callers always get a snapshot.
type Service struct {
	live Provider
	mock *MockProvider
}

// NewService builds a lookup. live may be nil, in which case every request
// is served from mock.
func NewService(live Provider, mock *MockProvider) *Service {
	if mock == nil {
		mock = NewMockProvider(nil)
	}
	return &Service{live: live, mock: mock}
}

// Fetch returns a snapshot for symbol. The only nil-snapshot outcome is a
// provider that reports the symbol as unknown. The error is non-nil only
// when ctx is already done.
func (s *Service) Fetch(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.live == nil {
		log.Printf("[MarketData] no live provider configured, using mock data for %s", symbol)
		return s.mock.Snapshot(symbol), nil
	}

	normalized := NormalizeSymbol(symbol)
	log.Printf("[MarketData] fetching %s (as %s) from %s", symbol, normalized, s.live.Name())
	snap, err := s.live.Quote(ctx, normalized)
	switch {
	case err == nil && snap != nil:
		return snap, nil
	case errors.Is(err, ErrSymbolNotFound):
		log.Printf("[MarketData] %s reports %s unknown: %v", s.live.Name(), normalized, err)
		return nil, nil
	case errors.Is(err, ErrBadStatus):
		log.Printf("[MarketData] %s status error, falling back to mock for %s: %v", s.live.Name(), symbol, err)
	case errors.Is(err, ErrMalformed):
		log.Printf("[MarketData] %s unexpected response, falling back to mock for %s: %v", s.live.Name(), symbol, err)
	case err != nil:
		log.Printf("[MarketData] %s request failed, falling back to mock for %s: %v", s.live.Name(), symbol, err)
	default:
		log.Printf("[MarketData] %s returned nothing, falling back to mock for %s", s.live.Name(), symbol)
	}
	return s.mock.Snapshot(symbol), nil
}

// Overview fetches every symbol concurrently and drops nil snapshots,
// keeping the input order.
func (s *Service) Overview(ctx context.Context, symbols []string) []*models.MarketSnapshot {
	snaps := make([]*models.MarketSnapshot, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			snaps[i], _ = s.Fetch(ctx, sym)
		}(i, sym)
	}
	wg.Wait()

	out := make([]*models.MarketSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		if snap != nil {
			out = append(out, snap)
		}
	}
	return out
}

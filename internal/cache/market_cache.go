package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/models"
)

const (
	keyOverview = "overview"
	keyTrending = "trending"
	snapPrefix  = "snap:"
)

// MarketCache holds presentation data (overview, trending, recent
// snapshots) for a short time so pollers and websocket clients share one
// upstream call.
type MarketCache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func NewMarketCache(ttl time.Duration) (*MarketCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 12,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create market cache: %w", err)
	}
	return &MarketCache{c: c, ttl: ttl}, nil
}

func (m *MarketCache) TTL() time.Duration { return m.ttl }

func (m *MarketCache) set(key string, v any) {
	m.c.SetWithTTL(key, v, 1, m.ttl)
	// make the value visible to the next Get
	m.c.Wait()
}

func (m *MarketCache) GetOverview() (*models.MarketOverview, bool) {
	v, ok := m.c.Get(keyOverview)
	if !ok {
		return nil, false
	}
	ov, ok := v.(*models.MarketOverview)
	return ov, ok
}

func (m *MarketCache) SetOverview(ov *models.MarketOverview) {
	m.set(keyOverview, ov)
}

func (m *MarketCache) GetTrending() ([]models.TrendingCoin, bool) {
	v, ok := m.c.Get(keyTrending)
	if !ok {
		return nil, false
	}
	coins, ok := v.([]models.TrendingCoin)
	return coins, ok
}

func (m *MarketCache) SetTrending(coins []models.TrendingCoin) {
	m.set(keyTrending, coins)
}

func (m *MarketCache) GetSnapshot(symbol string) (*models.MarketSnapshot, bool) {
	v, ok := m.c.Get(snapPrefix + dataflows.NormalizeSymbol(symbol))
	if !ok {
		return nil, false
	}
	snap, ok := v.(models.MarketSnapshot)
	if !ok {
		return nil, false
	}
	return &snap, true
}

func (m *MarketCache) SetSnapshot(symbol string, snap *models.MarketSnapshot) {
	if snap == nil {
		return
	}
	m.set(snapPrefix+dataflows.NormalizeSymbol(symbol), *snap)
}

func (m *MarketCache) Close() {
	m.c.Close()
}

// CachedLookup serves recent snapshots from the cache. Nil snapshots are
// never cached so an unknown symbol is retried on the next call.
type CachedLookup struct {
	next  dataflows.Lookup
	cache *MarketCache
}

func NewCachedLookup(next dataflows.Lookup, cache *MarketCache) *CachedLookup {
	return &CachedLookup{next: next, cache: cache}
}

func (l *CachedLookup) Fetch(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if snap, ok := l.cache.GetSnapshot(symbol); ok {
		log.Printf("[MarketCache] hit %s", symbol)
		return snap, nil
	}
	snap, err := l.next.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	l.cache.SetSnapshot(symbol, snap)
	return snap, nil
}

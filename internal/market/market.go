package market

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dyike/QuantumGPT/internal/cache"
	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/models"
)

type OverviewSource interface {
	Overview(ctx context.Context, symbols []string) []*models.MarketSnapshot
}

type TrendingSource interface {
	Trending(ctx context.Context) ([]models.TrendingCoin, error)
}

// Board serves the presentation-side market data: the overview strip,
// trending coins and single snapshots. The cache is optional.
type Board struct {
	lookup   dataflows.Lookup
	overview OverviewSource
	trending TrendingSource
	cache    *cache.MarketCache
	symbols  []string
	now      func() time.Time
}

func NewBoard(lookup dataflows.Lookup, overview OverviewSource, trending TrendingSource, c *cache.MarketCache, symbols []string) *Board {
	return &Board{
		lookup:   lookup,
		overview: overview,
		trending: trending,
		cache:    c,
		symbols:  append([]string(nil), symbols...),
		now:      time.Now,
	}
}

func (b *Board) Symbols() []string {
	return append([]string(nil), b.symbols...)
}

func (b *Board) Snapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	return b.lookup.Fetch(ctx, symbol)
}

// Overview returns the cached overview when fresh, otherwise refreshes it.
func (b *Board) Overview(ctx context.Context) *models.MarketOverview {
	if b.cache != nil {
		if ov, ok := b.cache.GetOverview(); ok {
			return ov
		}
	}
	return b.Refresh(ctx)
}

// Refresh fetches every overview symbol and replaces the cached copy.
func (b *Board) Refresh(ctx context.Context) *models.MarketOverview {
	snaps := b.overview.Overview(ctx, b.symbols)
	ov := &models.MarketOverview{
		Snapshots: snaps,
		UpdatedAt: b.now().UTC().Format(time.RFC3339),
	}
	if b.cache != nil {
		b.cache.SetOverview(ov)
	}
	log.Printf("[Market] overview refreshed: %d/%d symbols", len(snaps), len(b.symbols))
	return ov
}

func (b *Board) Trending(ctx context.Context) ([]models.TrendingCoin, error) {
	if b.trending == nil {
		return nil, fmt.Errorf("trending source not configured")
	}
	if b.cache != nil {
		if coins, ok := b.cache.GetTrending(); ok {
			return coins, nil
		}
	}
	coins, err := b.trending.Trending(ctx)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	if b.cache != nil {
		b.cache.SetTrending(coins)
	}
	return coins, nil
}

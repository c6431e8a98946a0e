package app

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/QuantumGPT/config"
	"github.com/dyike/QuantumGPT/internal/cache"
	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/internal/flows"
	"github.com/dyike/QuantumGPT/internal/llm"
	"github.com/dyike/QuantumGPT/internal/market"
	"github.com/dyike/QuantumGPT/models"
)

// Shared is the state that outlives a single engine: the market cache and
// the random source behind mock prices.
type Shared struct {
	Cache *cache.MarketCache
	Rand  dataflows.RandSource
}

// Engine is everything built from one config snapshot. The runtime swaps
// engines atomically on config change.
type Engine struct {
	Config  config.Config
	BuiltAt time.Time
	Version uint64

	Lookup   dataflows.Lookup
	Board    *market.Board
	Strategy *flows.StrategyFlow
	Screener *flows.ScreenerFlow
}

var engineSeq atomic.Uint64

// BuildEngine creates the chat model from cfg. A model that cannot be
// created leaves the engine usable: strategy requests fall back and
// screener requests fail.
func BuildEngine(ctx context.Context, cfg config.Config, shared Shared) (*Engine, error) {
	cm, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		log.Printf("[Engine] chat model unavailable: %v", err)
		return NewEngine(ctx, cfg, shared, &llm.Unavailable{Err: err})
	}
	return NewEngine(ctx, cfg, shared, cm)
}

func NewEngine(ctx context.Context, cfg config.Config, shared Shared, cm model.ToolCallingChatModel) (*Engine, error) {
	svc := dataflows.NewServiceFromConfig(cfg, shared.Rand)

	// flows and alerts read fresh snapshots; only the board serves cached
	// presentation data
	var boardLookup dataflows.Lookup = svc
	var boardCache *cache.MarketCache
	if cfg.CacheEnabled && shared.Cache != nil {
		boardLookup = cache.NewCachedLookup(svc, shared.Cache)
		boardCache = shared.Cache
	}
	var trending market.TrendingSource
	if cfg.CoinGeckoBaseURL != "" {
		trending = dataflows.NewCoinGeckoFromConfig(cfg)
	}
	board := market.NewBoard(boardLookup, svc, trending, boardCache, cfg.OverviewSymbols)

	var opts []flows.Option
	if cfg.Debug {
		opts = append(opts, flows.WithCallbacks(llm.NewFlowLogger("Flow")))
	}
	opts = append(opts, flows.WithMaxStep(cfg.MaxStep))

	strategy, err := flows.NewStrategyFlow(ctx, cm, svc, opts...)
	if err != nil {
		return nil, err
	}
	screener, err := flows.NewScreenerFlow(ctx, cm, svc, append(opts, flows.WithTools(cfg.ScreenerTools))...)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Config:   cfg,
		BuiltAt:  time.Now(),
		Version:  engineSeq.Add(1),
		Lookup:   svc,
		Board:    board,
		Strategy: strategy,
		Screener: screener,
	}
	log.Printf("[Engine] v%d built (provider=%s model=%s market=%s tools=%v)",
		e.Version, cfg.LLMProvider, cfg.LLMModel, cfg.MarketProvider, screener.ToolsBound())
	return e, nil
}

func (e *Engine) Suggest(ctx context.Context, req models.StrategyRequest) (*models.StrategyResult, error) {
	if e == nil || e.Strategy == nil {
		return nil, fmt.Errorf("engine not ready")
	}
	return e.Strategy.Suggest(ctx, req)
}

func (e *Engine) Screen(ctx context.Context, req models.ScreenerRequest) (*models.ScreenerResult, error) {
	if e == nil || e.Screener == nil {
		return nil, fmt.Errorf("engine not ready")
	}
	return e.Screener.Screen(ctx, req)
}

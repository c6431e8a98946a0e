package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/dyike/QuantumGPT/config"
	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/cache"
	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/internal/market"
	"github.com/dyike/QuantumGPT/internal/storage"
	"github.com/dyike/QuantumGPT/models"
)

type EngineBuilder func(context.Context, config.Config, Shared) (*Engine, error)

type Option func(*Runtime)

func WithBuilder(builder EngineBuilder) Option {
	return func(r *Runtime) {
		if builder != nil {
			r.builder = builder
		}
	}
}

// WithNotifier receives engine lifecycle events.
func WithNotifier(fn func(models.Event)) Option {
	return func(r *Runtime) {
		r.notify = fn
	}
}

// WithStore replaces the store opened from config.
func WithStore(kv storage.KV) Option {
	return func(r *Runtime) {
		r.kv = kv
	}
}

// WithoutWatch disables config hot reload.
func WithoutWatch() Option {
	return func(r *Runtime) {
		r.noWatch = true
	}
}

// Runtime owns the long-lived resources and the current engine.
type Runtime struct {
	cfgMgr *config.Manager
	engine atomic.Pointer[Engine]

	kv        storage.KV
	watchlist *storage.Watchlist
	alerts    *storage.Alerts
	shared    Shared

	builder EngineBuilder
	notify  func(models.Event)
	noWatch bool
	cancel  context.CancelFunc
}

func NewRuntime(ctx context.Context, cfgMgr *config.Manager, opts ...Option) (*Runtime, error) {
	if cfgMgr == nil {
		return nil, fmt.Errorf("config manager is required")
	}

	rt := &Runtime{
		cfgMgr:  cfgMgr,
		builder: BuildEngine,
	}
	for _, opt := range opts {
		opt(rt)
	}

	cfg := cfgMgr.Get()
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if rt.kv == nil {
		kv, err := storage.Open(cfg)
		if err != nil {
			return nil, err
		}
		rt.kv = kv
	}
	rt.watchlist = storage.NewWatchlist(rt.kv)
	rt.alerts = storage.NewAlerts(rt.kv)

	mc, err := cache.NewMarketCache(time.Minute)
	if err != nil {
		_ = rt.kv.Close()
		return nil, err
	}
	rt.shared = Shared{Cache: mc, Rand: dataflows.NewRandSource(0)}

	if err := rt.reload(ctx, cfg); err != nil {
		rt.closeResources()
		return nil, err
	}

	if rt.noWatch {
		return rt, nil
	}
	watchCtx, cancel := context.WithCancel(ctx)
	rt.cancel = cancel
	if err := cfgMgr.Watch(watchCtx, func(cfg config.Config) {
		if err := rt.reload(watchCtx, cfg); err != nil {
			log.Printf("[Runtime] engine reload failed: %v", err)
		}
	}); err != nil {
		cancel()
		rt.closeResources()
		return nil, err
	}
	return rt, nil
}

func (r *Runtime) Engine() *Engine {
	return r.engine.Load()
}

func (r *Runtime) Config() config.Config {
	return r.cfgMgr.Get()
}

func (r *Runtime) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.closeResources()
}

func (r *Runtime) closeResources() {
	if r.shared.Cache != nil {
		r.shared.Cache.Close()
	}
	if r.kv != nil {
		if err := r.kv.Close(); err != nil {
			log.Printf("[Runtime] close store: %v", err)
		}
	}
}

func (r *Runtime) UpdateConfigJSON(jsonStr string) error {
	return r.cfgMgr.UpdateFromJSON(jsonStr)
}

func (r *Runtime) Suggest(ctx context.Context, req models.StrategyRequest) (*models.StrategyResult, error) {
	return r.Engine().Suggest(ctx, req)
}

func (r *Runtime) Screen(ctx context.Context, req models.ScreenerRequest) (*models.ScreenerResult, error) {
	return r.Engine().Screen(ctx, req)
}

func (r *Runtime) Watchlist() *storage.Watchlist { return r.watchlist }
func (r *Runtime) Alerts() *storage.Alerts       { return r.alerts }
func (r *Runtime) Board() *market.Board          { return r.Engine().Board }

// Refresh refreshes the overview of the current engine.
func (r *Runtime) Refresh(ctx context.Context) *models.MarketOverview {
	return r.Engine().Board.Refresh(ctx)
}

// Lookup is the market data lookup of the current engine.
func (r *Runtime) Lookup() dataflows.Lookup {
	return lookupFunc(func(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
		return r.Engine().Lookup.Fetch(ctx, symbol)
	})
}

type lookupFunc func(ctx context.Context, symbol string) (*models.MarketSnapshot, error)

func (f lookupFunc) Fetch(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	return f(ctx, symbol)
}

func (r *Runtime) reload(ctx context.Context, cfg config.Config) error {
	engine, err := r.builder(ctx, cfg, r.shared)
	if err != nil {
		r.notifyFailure(err)
		return err
	}
	if engine == nil {
		err := errors.New("engine builder returned nil")
		r.notifyFailure(err)
		return err
	}
	r.engine.Store(engine)
	r.notifySuccess(engine)
	return nil
}

func (r *Runtime) notifySuccess(engine *Engine) {
	if r.notify == nil {
		return
	}
	r.notify(models.Event{
		Type: consts.Event_EngineReloaded,
		Data: map[string]any{
			"version":  engine.Version,
			"built_at": engine.BuiltAt.UTC().Format(time.RFC3339),
		},
	})
}

func (r *Runtime) notifyFailure(err error) {
	if r.notify == nil {
		return
	}
	r.notify(models.Event{
		Type: consts.Event_EngineReloadFailed,
		Data: map[string]string{"error": err.Error()},
	})
}

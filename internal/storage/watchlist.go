package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/models"
)

// DefaultWatchlist is shown to a client that has never saved a watchlist.
var DefaultWatchlist = []string{"BITSTAMP:BTCUSD", "BINANCE:ETHUSDT", "COINBASE:SOLUSD"}

type Watchlist struct {
	mu sync.Mutex
	kv KV
}

func NewWatchlist(kv KV) *Watchlist {
	return &Watchlist{kv: kv}
}

func (w *Watchlist) List(ctx context.Context, clientID string) ([]string, error) {
	var list []string
	err := getJSON(ctx, w.kv, namespace(clientID), consts.Key_Watchlist, &list)
	if errors.Is(err, ErrNotFound) {
		return append([]string(nil), DefaultWatchlist...), nil
	}
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// Add appends symbol in EXCHANGE:PAIR form. Adding a symbol that is
// already present returns ErrAlreadyExists and leaves the list unchanged.
func (w *Watchlist) Add(ctx context.Context, clientID, symbol string) ([]string, error) {
	symbol, err := normalizeWatchSymbol(symbol)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	list, err := w.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		if s == symbol {
			return list, ErrAlreadyExists
		}
	}
	list = append(list, symbol)
	if err := setJSON(ctx, w.kv, namespace(clientID), consts.Key_Watchlist, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (w *Watchlist) Remove(ctx context.Context, clientID, symbol string) ([]string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	w.mu.Lock()
	defer w.mu.Unlock()
	list, err := w.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != symbol {
			out = append(out, s)
		}
	}
	if len(out) == len(list) {
		return list, ErrNotFound
	}
	if err := setJSON(ctx, w.kv, namespace(clientID), consts.Key_Watchlist, out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeWatchSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var v models.ValidationError
	exchange, pair, ok := strings.Cut(symbol, ":")
	switch {
	case symbol == "":
		v.Add("symbol", "Symbol is required")
	case !ok || exchange == "" || pair == "":
		v.Add("symbol", "Symbol must include an exchange prefix, e.g. BINANCE:BTCUSDT")
	case strings.ContainsAny(symbol, " \t"):
		v.Add("symbol", "Symbol must not contain spaces")
	}
	return symbol, v.OrNil()
}

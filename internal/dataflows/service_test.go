package dataflows

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/piquette/finance-go"
)

func newMessariServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-messari-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		if r.URL.Path != "/assets/btc/metrics" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func neutralMock() *MockProvider {
	return NewMockProvider(&seqRand{vals: []float64{0.5}})
}

func TestServiceUsesLiveMessari(t *testing.T) {
	srv := newMessariServer(t, http.StatusOK, `{"data":{"symbol":"BTC","market_data":{"price_usd":70000.5,"volume_last_24_hours":123.4,"percent_change_usd_last_24_hours":-1.5}}}`)
	svc := NewService(NewMessariClient(srv.URL, "k", time.Second), neutralMock())

	snap, err := svc.Fetch(context.Background(), "BINANCE:BTCUSDT")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.Symbol != "BTC" || *snap.Price != 70000.5 || *snap.Volume24h != 123.4 || *snap.PriceChange24hPercent != -1.5 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestServiceMessariNullPriceStaysNull(t *testing.T) {
	srv := newMessariServer(t, http.StatusOK, `{"data":{"symbol":"BTC","market_data":{"price_usd":null}}}`)
	svc := NewService(NewMessariClient(srv.URL, "k", time.Second), neutralMock())

	snap, _ := svc.Fetch(context.Background(), "BTC")
	if snap == nil || snap.Price != nil {
		t.Fatalf("expected snapshot with null price, got %+v", snap)
	}
}

func TestServiceFallsBackToMock(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error":    {http.StatusInternalServerError, `{"status":{"error_message":"boom"}}`},
		"not found":       {http.StatusNotFound, `{"status":{"error_message":"Asset not found"}}`},
		"malformed json":  {http.StatusOK, `{"data":`},
		"missing section": {http.StatusOK, `{"data":{"symbol":"BTC"}}`},
		"missing price":   {http.StatusOK, `{"data":{"symbol":"BTC","market_data":{"volume_last_24_hours":5}}}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newMessariServer(t, tc.status, tc.body)
			svc := NewService(NewMessariClient(srv.URL, "k", time.Second), neutralMock())
			snap, err := svc.Fetch(context.Background(), "BTC")
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if snap == nil || *snap.Price != 68500.12 {
				t.Fatalf("expected BTC mock, got %+v", snap)
			}
		})
	}
}

func TestServiceNetworkErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewService(NewMessariClient(url, "k", time.Second), neutralMock())
	snap, err := svc.Fetch(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if *snap.Price != 3850.56 {
		t.Fatalf("expected ETH mock price, got %v", *snap.Price)
	}
}

func TestServiceWithoutLiveProvider(t *testing.T) {
	svc := NewService(nil, neutralMock())
	snap, _ := svc.Fetch(context.Background(), "SOL")
	if *snap.Price != 165.23 {
		t.Fatalf("expected SOL mock, got %v", *snap.Price)
	}
}

func TestServiceHonestNullForUnknownSymbol(t *testing.T) {
	y := &YahooClient{get: func(string) (*finance.Quote, error) { return nil, nil }}
	svc := NewService(y, neutralMock())

	snap, err := svc.Fetch(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}

func TestServiceCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err := NewService(nil, neutralMock()).Fetch(ctx, "BTC")
	if !errors.Is(err, context.Canceled) || snap != nil {
		t.Fatalf("expected canceled error, got %v %+v", err, snap)
	}
}

func TestYahooQuote(t *testing.T) {
	var asked string
	y := &YahooClient{get: func(sym string) (*finance.Quote, error) {
		asked = sym
		return &finance.Quote{RegularMarketPrice: 2.5, RegularMarketVolume: 1000, RegularMarketChangePercent: 3}, nil
	}}
	snap, err := y.Quote(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if asked != "ADA-USD" {
		t.Fatalf("asked yahoo for %q", asked)
	}
	if *snap.Price != 2.5 || *snap.Volume24h != 1000 || *snap.PriceChange24hPercent != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	y.get = func(string) (*finance.Quote, error) { return nil, errors.New("rate limited") }
	if _, err := y.Quote(context.Background(), "ada"); err == nil || errors.Is(err, ErrSymbolNotFound) {
		t.Fatalf("expected plain failure, got %v", err)
	}
}

func TestOverviewKeepsOrderAndDropsNil(t *testing.T) {
	y := &YahooClient{get: func(sym string) (*finance.Quote, error) {
		if sym == "ADA-USD" {
			return nil, nil
		}
		return &finance.Quote{RegularMarketPrice: 1}, nil
	}}
	svc := NewService(y, neutralMock())

	snaps := svc.Overview(context.Background(), []string{"BTC", "ETH", "SOL", "ADA"})
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	for i, want := range []string{"BTC", "ETH", "SOL"} {
		if snaps[i].Symbol != want {
			t.Errorf("snaps[%d] = %s, want %s", i, snaps[i].Symbol, want)
		}
	}
}

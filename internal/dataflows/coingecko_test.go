package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCoinGeckoTrending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/trending":
			_, _ = w.Write([]byte(`{"coins":[{"item":{"id":"pepe","name":"Pepe","symbol":"PEPE","market_cap_rank":30,"price_btc":0.5}}]}`))
		case "/simple/price":
			if r.URL.Query().Get("ids") != "bitcoin" {
				t.Errorf("unexpected ids %q", r.URL.Query().Get("ids"))
			}
			_, _ = w.Write([]byte(`{"bitcoin":{"usd":60000}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	coins, err := NewCoinGeckoClient(srv.URL, time.Second).Trending(context.Background())
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(coins) != 1 || coins[0].Symbol != "PEPE" || coins[0].Rank != 30 {
		t.Fatalf("unexpected coins %+v", coins)
	}
	if coins[0].PriceUSD == nil || *coins[0].PriceUSD != 30000 {
		t.Fatalf("expected derived usd price 30000, got %v", coins[0].PriceUSD)
	}
}

func TestCoinGeckoTrendingWithoutBitcoinPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/trending" {
			_, _ = w.Write([]byte(`{"coins":[{"item":{"id":"x","name":"X","symbol":"X","price_btc":1}}]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	coins, err := NewCoinGeckoClient(srv.URL, time.Second).Trending(context.Background())
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if coins[0].PriceUSD != nil {
		t.Fatalf("expected no usd price, got %v", *coins[0].PriceUSD)
	}
}

func TestCoinGeckoTrendingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewCoinGeckoClient(srv.URL, time.Second).Trending(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

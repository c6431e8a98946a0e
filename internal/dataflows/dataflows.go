package dataflows

import (
	"log"
	"time"

	"github.com/dyike/QuantumGPT/config"
)

// NewServiceFromConfig picks the live provider named by the config. A
// Messari provider without an API key means mock-only operation.
func NewServiceFromConfig(cfg config.Config, rnd RandSource) *Service {
	timeout := time.Duration(cfg.MarketTimeoutSec) * time.Second
	mock := NewMockProvider(rnd)

	var live Provider
	switch cfg.MarketProvider {
	case config.MarketMessari:
		if cfg.HasMarketKey() {
			live = NewMessariClient(cfg.MessariBaseURL, cfg.MessariAPIKey, timeout)
		} else {
			log.Printf("[MarketData] COINDESK_API_KEY not set, market data will be mocked")
		}
	case config.MarketYahoo:
		live = NewYahooClient()
	}
	return NewService(live, mock)
}

func NewCoinGeckoFromConfig(cfg config.Config) *CoinGeckoClient {
	return NewCoinGeckoClient(cfg.CoinGeckoBaseURL, time.Duration(cfg.MarketTimeoutSec)*time.Second)
}

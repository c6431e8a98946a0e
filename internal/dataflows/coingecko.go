package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/QuantumGPT/models"
)

// CoinGeckoClient backs the trending strip. Its errors are returned to the
// caller; there is no mock fallback for presentation data.
type CoinGeckoClient struct {
	client *resty.Client
}

func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &CoinGeckoClient{client: client}
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string  `json:"id"`
			Name          string  `json:"name"`
			Symbol        string  `json:"symbol"`
			MarketCapRank int     `json:"market_cap_rank"`
			Thumb         string  `json:"thumb"`
			PriceBTC      float64 `json:"price_btc"`
		} `json:"item"`
	} `json:"coins"`
}

// Trending lists CoinGecko's trending coins with a USD price derived from
// the BTC price when that lookup succeeds.
func (c *CoinGeckoClient) Trending(ctx context.Context) ([]models.TrendingCoin, error) {
	resp, err := c.client.R().SetContext(ctx).Get("/search/trending")
	if err != nil {
		return nil, fmt.Errorf("coingecko trending: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: coingecko trending returned %d", ErrBadStatus, resp.StatusCode())
	}
	var body trendingResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode trending: %v", ErrMalformed, err)
	}

	btcUSD, err := c.BitcoinUSD(ctx)
	if err != nil {
		log.Printf("[CoinGecko] bitcoin price unavailable, trending prices stay in BTC: %v", err)
	}

	coins := make([]models.TrendingCoin, 0, len(body.Coins))
	for _, entry := range body.Coins {
		it := entry.Item
		coin := models.TrendingCoin{
			ID:       it.ID,
			Name:     it.Name,
			Symbol:   it.Symbol,
			Rank:     it.MarketCapRank,
			PriceBTC: it.PriceBTC,
			Thumb:    it.Thumb,
		}
		if btcUSD > 0 {
			coin.PriceUSD = round(it.PriceBTC*btcUSD, 6)
		}
		coins = append(coins, coin)
	}
	return coins, nil
}

func (c *CoinGeckoClient) BitcoinUSD(ctx context.Context) (float64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           "bitcoin",
			"vs_currencies": "usd",
		}).
		Get("/simple/price")
	if err != nil {
		return 0, fmt.Errorf("coingecko simple price: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("%w: coingecko simple price returned %d", ErrBadStatus, resp.StatusCode())
	}
	var body map[string]map[string]float64
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return 0, fmt.Errorf("%w: decode simple price: %v", ErrMalformed, err)
	}
	price, ok := body["bitcoin"]["usd"]
	if !ok {
		return 0, fmt.Errorf("%w: bitcoin usd missing", ErrMalformed)
	}
	return price, nil
}

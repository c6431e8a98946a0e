package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/QuantumGPT/models"
)

// MessariClient reads asset metrics from the Messari v1 API.
type MessariClient struct {
	client *resty.Client
}

func NewMessariClient(baseURL, apiKey string, timeout time.Duration) *MessariClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("x-messari-api-key", apiKey)
	client.SetHeader("Accept", "application/json")

	return &MessariClient{client: client}
}

type messariMetrics struct {
	Data *struct {
		Symbol     string `json:"symbol"`
		MarketData *struct {
			PriceUSD      *float64 `json:"price_usd"`
			Volume24h     *float64 `json:"volume_last_24_hours"`
			PercentChange *float64 `json:"percent_change_usd_last_24_hours"`
		} `json:"market_data"`
	} `json:"data"`
}

func (c *MessariClient) Name() string { return "messari" }

func (c *MessariClient) Quote(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	asset := strings.ToLower(symbol)
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("asset", asset).
		Get("/assets/{asset}/metrics")
	if err != nil {
		return nil, fmt.Errorf("messari request for %s: %w", asset, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: messari %s returned %d: %s", ErrBadStatus, asset, resp.StatusCode(), truncate(resp.String(), 200))
	}

	var body messariMetrics
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode messari %s: %v", ErrMalformed, asset, err)
	}
	if body.Data == nil || body.Data.MarketData == nil {
		return nil, fmt.Errorf("%w: messari %s missing data.market_data", ErrMalformed, asset)
	}
	// an explicit null price is an answer, an absent one is not
	var fields struct {
		Data struct {
			MarketData map[string]json.RawMessage `json:"market_data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &fields); err != nil {
		return nil, fmt.Errorf("%w: decode messari %s: %v", ErrMalformed, asset, err)
	}
	if _, ok := fields.Data.MarketData["price_usd"]; !ok {
		return nil, fmt.Errorf("%w: messari %s missing market_data.price_usd", ErrMalformed, asset)
	}

	md := body.Data.MarketData
	out := &models.MarketSnapshot{
		Symbol:                strings.ToUpper(symbol),
		Price:                 md.PriceUSD,
		Volume24h:             md.Volume24h,
		PriceChange24hPercent: md.PercentChange,
	}
	if body.Data.Symbol != "" {
		out.Symbol = body.Data.Symbol
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

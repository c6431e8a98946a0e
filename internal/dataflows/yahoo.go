package dataflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"github.com/dyike/QuantumGPT/models"
)

// YahooClient quotes crypto pairs such as BTC-USD from Yahoo Finance.
type YahooClient struct {
	get func(symbol string) (*finance.Quote, error)
}

func NewYahooClient() *YahooClient {
	return &YahooClient{get: quote.Get}
}

func (y *YahooClient) Name() string { return "yahoo" }

func (y *YahooClient) Quote(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pair := strings.ToUpper(symbol) + "-USD"
	q, err := y.get(pair)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", pair, err)
	}
	if q == nil {
		return nil, fmt.Errorf("yahoo %s: %w", pair, ErrSymbolNotFound)
	}
	if q.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("%w: yahoo %s has no market price", ErrMalformed, pair)
	}

	return &models.MarketSnapshot{
		Symbol:                strings.ToUpper(symbol),
		Price:                 models.Float(q.RegularMarketPrice),
		Volume24h:             models.Float(float64(q.RegularMarketVolume)),
		PriceChange24hPercent: models.Float(q.RegularMarketChangePercent),
	}, nil
}

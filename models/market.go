package models

// MarketDataInput is the argument the model passes to the market data tool.
type MarketDataInput struct {
	Symbol string `json:"symbol"`
}

// MarketSnapshot is a single point-in-time reading for one symbol.
// A nil Price means the consuming flow must not propose a trade.
type MarketSnapshot struct {
	Symbol                string   `json:"symbol"`
	Price                 *float64 `json:"price"`
	Volume24h             *float64 `json:"volume24h"`
	PriceChange24hPercent *float64 `json:"priceChange24hPercent"`
}

func (s *MarketSnapshot) HasPrice() bool {
	return s != nil && s.Price != nil
}

// TrendingCoin is one entry of the trending ticker strip.
type TrendingCoin struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Rank     int      `json:"marketCapRank"`
	PriceBTC float64  `json:"priceBtc"`
	PriceUSD *float64 `json:"priceUsd"`
	Thumb    string   `json:"thumb,omitempty"`
}

type MarketOverview struct {
	Snapshots []*MarketSnapshot `json:"snapshots"`
	UpdatedAt string            `json:"updatedAt"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

package models

import (
	"github.com/cloudwego/eino/schema"
)

// StrategyState is the per-run graph state of the strategy flow.
type StrategyState struct {
	Request  StrategyRequest   `json:"request"`
	Snapshot *MarketSnapshot   `json:"snapshot"`
	Messages []*schema.Message `json:"messages"`
}

// ScreenerState is the per-run graph state of the screener flow.
type ScreenerState struct {
	Request    ScreenerRequest   `json:"request"`
	ToolsBound bool              `json:"tools_bound"`
	Messages   []*schema.Message `json:"messages"`
}

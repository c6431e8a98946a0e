package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/models"
)

const marketToolDesc = "Fetches the current market data (price, volume, 24h change) for a specific cryptocurrency symbol. " +
	"Use this to get up-to-date information before making analyses or suggestions. Returns null if the symbol is unknown."

// NewMarketDataTool exposes the market data lookup to the model. Every result
// is recorded in the Ledger carried by ctx, if any.
func NewMarketDataTool(lookup dataflows.Lookup) tool.InvokableTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: consts.MarketDataTool,
			Desc: marketToolDesc,
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     schema.String,
					Desc:     "The ticker symbol of the cryptocurrency to fetch data for (e.g., BTC, ETH).",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.MarketDataInput) (*models.MarketSnapshot, error) {
			symbol := strings.TrimSpace(input.Symbol)
			if symbol == "" {
				return nil, fmt.Errorf("symbol parameter is required")
			}

			log.Printf("[MarketDataTool] called for %s", symbol)
			snap, err := lookup.Fetch(ctx, symbol)
			if err != nil {
				return nil, fmt.Errorf("market data for %s: %w", symbol, err)
			}
			if snap == nil {
				log.Printf("[MarketDataTool] no data for %s", symbol)
			}

			if ledger := LedgerFrom(ctx); ledger != nil {
				ledger.Record(symbol, snap)
			}
			return snap, nil
		},
	)
}

package flows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/models"
)

const longStrategy = `{"tradePossible": true, "suggestedPosition": "Long",
"strategyExplanation": "Breakout above resistance.", "currentPrice": 99999,
"entryPoint": 68000, "exitPoint": 72000, "stopLossLevel": 66000, "profitTarget": 72000,
"confidenceLevel": "High", "riskWarnings": ["Volatile."], "disclaimer": "made up"}`

func newStrategy(t *testing.T, cm *scriptedModel, lookup interface {
	Fetch(context.Context, string) (*models.MarketSnapshot, error)
}) *StrategyFlow {
	t.Helper()
	f, err := NewStrategyFlow(context.Background(), cm, lookup)
	if err != nil {
		t.Fatalf("NewStrategyFlow: %v", err)
	}
	return f
}

func TestSuggestLookupFailsForcesNoTrade(t *testing.T) {
	cm := newScriptedModel(schema.AssistantMessage(longStrategy, nil))
	f := newStrategy(t, cm, failingLookup{})

	res, err := f.Suggest(context.Background(), models.StrategyRequest{Cryptocurrency: "BTC", RiskTolerance: "low"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if res.TradePossible || res.SuggestedPosition != models.PositionNone {
		t.Fatalf("expected no trade, got %+v", res)
	}
	if res.CurrentPrice != nil || res.EntryPoint != nil || res.ExitPoint != nil || res.StopLossLevel != nil || res.ProfitTarget != nil {
		t.Fatalf("expected all prices null, got %+v", res)
	}
	if res.ConfidenceLevel != models.ConfidenceVeryLow {
		t.Fatalf("confidence %q", res.ConfidenceLevel)
	}
	found := false
	for _, w := range res.RiskWarnings {
		if strings.Contains(strings.ToLower(w), "missing or incomplete market data") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing-data warning absent: %v", res.RiskWarnings)
	}
	if !strings.HasPrefix(res.StrategyExplanation, "Strategy cannot be determined") {
		t.Fatalf("explanation not prefixed: %q", res.StrategyExplanation)
	}
	if res.Disclaimer != consts.Disclaimer {
		t.Fatalf("disclaimer not canonical")
	}
}

func TestSuggestNoTradeNullsEntry(t *testing.T) {
	reply := `{"tradePossible": false, "suggestedPosition": "Short", "strategyExplanation": "Too choppy.",
"currentPrice": 1, "entryPoint": 3700, "exitPoint": null, "stopLossLevel": "3900", "profitTarget": null,
"riskWarnings": [], "disclaimer": "something else"}`
	cm := newScriptedModel(schema.AssistantMessage("```json\n"+reply+"\n```", nil))
	lookup := mapLookup{"ETH": {Symbol: "ETH", Price: models.Float(3800), Volume24h: models.Float(1.4e10)}}
	f := newStrategy(t, cm, lookup)

	res, err := f.Suggest(context.Background(), models.StrategyRequest{Cryptocurrency: "eth", RiskTolerance: "HIGH"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if res.EntryPoint != nil || res.StopLossLevel != nil {
		t.Fatalf("prices should be nulled: entry=%v stop=%v", res.EntryPoint, res.StopLossLevel)
	}
	if res.SuggestedPosition != models.PositionNone {
		t.Fatalf("position %q", res.SuggestedPosition)
	}
	if res.CurrentPrice == nil || *res.CurrentPrice != 3800 {
		t.Fatalf("currentPrice should come from snapshot, got %v", res.CurrentPrice)
	}
	if res.ConfidenceLevel != models.ConfidenceVeryLow {
		t.Fatalf("confidence %q", res.ConfidenceLevel)
	}
	if len(res.RiskWarnings) != 1 || res.RiskWarnings[0] != noTradeWarning {
		t.Fatalf("warnings %v", res.RiskWarnings)
	}
	if res.Disclaimer != consts.Disclaimer {
		t.Fatalf("disclaimer not canonical")
	}
}

func TestSuggestKeepsValidTrade(t *testing.T) {
	cm := newScriptedModel(schema.AssistantMessage(longStrategy, nil))
	lookup := mapLookup{"BTC": {Symbol: "BTC", Price: models.Float(68500.12)}}
	f := newStrategy(t, cm, lookup)

	res, err := f.Suggest(context.Background(), models.StrategyRequest{Cryptocurrency: "BTC", RiskTolerance: "medium", Sentiment: "bullish"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if !res.TradePossible || res.SuggestedPosition != models.PositionLong {
		t.Fatalf("trade lost: %+v", res)
	}
	if *res.CurrentPrice != 68500.12 || *res.EntryPoint != 68000 {
		t.Fatalf("prices %v %v", *res.CurrentPrice, *res.EntryPoint)
	}
	if res.ConfidenceLevel != models.ConfidenceHigh || len(res.RiskWarnings) != 1 {
		t.Fatalf("unexpected %+v", res)
	}
}

func TestSuggestPromptEmbedsMarketData(t *testing.T) {
	cm := newScriptedModel(schema.AssistantMessage(longStrategy, nil))
	lookup := mapLookup{"SOL": {Symbol: "SOL", Price: models.Float(165.23)}}
	f := newStrategy(t, cm, lookup)

	if _, err := f.Suggest(context.Background(), models.StrategyRequest{Cryptocurrency: "SOL", RiskTolerance: "low"}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	in := cm.firstInput()
	if len(in) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(in))
	}
	if !strings.Contains(in[0].Content, consts.Disclaimer) {
		t.Fatalf("system prompt lacks disclaimer")
	}
	user := in[1].Content
	for _, want := range []string{"Cryptocurrency: SOL", "$165.23", "24h Volume: not available", "Not specified"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestSuggestFallbackOnModelError(t *testing.T) {
	cm := newScriptedModel()
	cm.err = errors.New("upstream 500")
	lookup := mapLookup{"BTC": {Symbol: "BTC", Price: models.Float(70000)}}
	f := newStrategy(t, cm, lookup)

	res, err := f.Suggest(context.Background(), models.StrategyRequest{Cryptocurrency: "BTC", RiskTolerance: "low"})
	if err != nil {
		t.Fatalf("Suggest should not fail: %v", err)
	}
	if res.TradePossible || res.StrategyExplanation != fallbackExplanation {
		t.Fatalf("expected fallback, got %+v", res)
	}
	if res.CurrentPrice == nil || *res.CurrentPrice != 70000 {
		t.Fatalf("fallback should carry snapshot price")
	}
	if res.Disclaimer != consts.Disclaimer {
		t.Fatalf("disclaimer not canonical")
	}
}

func TestSuggestFallbackOnUnparseableOutput(t *testing.T) {
	for name, reply := range map[string]string{
		"empty":        "",
		"prose":        "I am unable to help with that.",
		"bad position": `{"tradePossible": true, "suggestedPosition": "Sideways", "strategyExplanation": "x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			cm := newScriptedModel(schema.AssistantMessage(reply, nil))
			f := newStrategy(t, cm, failingLookup{})
			res, err := f.Suggest(context.Background(), models.StrategyRequest{Cryptocurrency: "BTC", RiskTolerance: "low"})
			if err != nil {
				t.Fatalf("Suggest: %v", err)
			}
			if res.TradePossible || res.SuggestedPosition != models.PositionNone {
				t.Fatalf("expected fallback, got %+v", res)
			}
			if len(res.RiskWarnings) != 2 || res.RiskWarnings[0] != fallbackWarning {
				t.Fatalf("warnings %v", res.RiskWarnings)
			}
		})
	}
}

func TestSuggestRejectsInvalidRequest(t *testing.T) {
	cm := newScriptedModel()
	f := newStrategy(t, cm, mapLookup{})

	_, err := f.Suggest(context.Background(), models.StrategyRequest{Cryptocurrency: "BTC", RiskTolerance: "extreme"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(cm.inputs) != 0 {
		t.Fatalf("model should not be called")
	}
}

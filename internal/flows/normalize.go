package flows

import (
	"fmt"
	"strings"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/models"
)

const (
	fallbackExplanation = "The AI model did not return a valid strategy. This could be due to an internal error or inability to process the request. Market data may or may not have been available."
	fallbackWarning     = "AI model processing error."
	noTradeWarning      = "AI determined no viable trade based on current data and risk assessment."
)

// Phrases that mark a warning or explanation as already carrying the
// missing-data notice.
var missingDataMarkers = []string{
	"missing market data",
	"missing or incomplete market data",
}

func missingDataNotice(symbol string) string {
	return fmt.Sprintf("Strategy cannot be determined due to missing or incomplete market data for %s.", symbol)
}

// Normalize turns raw model output into a result that satisfies the
// cross-field rules. raw is never modified.
//
//   - currentPrice always comes from snap.
//   - missing snapshot price forces a no-trade result with a notice.
//   - no trade means position None and no price levels.
//   - the disclaimer is always the canonical text.
func Normalize(raw *RawStrategy, snap *models.MarketSnapshot, symbol string) *models.StrategyResult {
	out := &models.StrategyResult{}
	if raw != nil {
		if raw.TradePossible != nil {
			out.TradePossible = *raw.TradePossible
		}
		if raw.SuggestedPosition != nil {
			out.SuggestedPosition = models.Position(*raw.SuggestedPosition)
		}
		if raw.StrategyExplanation != nil {
			out.StrategyExplanation = *raw.StrategyExplanation
		}
		out.EntryPoint = copyFloat(raw.EntryPoint.ptr())
		out.ExitPoint = copyFloat(raw.ExitPoint.ptr())
		out.StopLossLevel = copyFloat(raw.StopLossLevel.ptr())
		out.ProfitTarget = copyFloat(raw.ProfitTarget.ptr())
		if raw.ConfidenceLevel != nil {
			out.ConfidenceLevel = models.Confidence(*raw.ConfidenceLevel)
		}
		if raw.RiskWarnings != nil {
			out.RiskWarnings = append([]string(nil), raw.RiskWarnings...)
		}
	}
	return finish(out, snap, symbol)
}

// Fallback is the well-formed result returned when the model fails or its
// output cannot be parsed.
func Fallback(snap *models.MarketSnapshot, symbol string) *models.StrategyResult {
	out := &models.StrategyResult{
		TradePossible:       false,
		SuggestedPosition:   models.PositionNone,
		StrategyExplanation: fallbackExplanation,
		ConfidenceLevel:     models.ConfidenceVeryLow,
		RiskWarnings:        []string{fallbackWarning},
	}
	return finish(out, snap, symbol)
}

func finish(out *models.StrategyResult, snap *models.MarketSnapshot, symbol string) *models.StrategyResult {
	out.CurrentPrice = nil
	if snap != nil {
		out.CurrentPrice = copyFloat(snap.Price)
	}

	if out.ConfidenceLevel == "" {
		if out.TradePossible {
			out.ConfidenceLevel = models.ConfidenceMedium
		} else {
			out.ConfidenceLevel = models.ConfidenceVeryLow
		}
	}
	if out.RiskWarnings == nil {
		out.RiskWarnings = []string{}
	}

	if out.CurrentPrice == nil {
		out.TradePossible = false
		out.ConfidenceLevel = models.ConfidenceVeryLow
		notice := missingDataNotice(symbol)
		if !anyHasMarker(out.RiskWarnings) {
			out.RiskWarnings = append(out.RiskWarnings, notice)
		}
		if !hasMarker(out.StrategyExplanation) {
			out.StrategyExplanation = strings.TrimSpace(notice + " " + out.StrategyExplanation)
		}
	}

	if !out.TradePossible {
		out.SuggestedPosition = models.PositionNone
		out.ClearPrices()
		if len(out.RiskWarnings) == 0 && out.ConfidenceLevel == models.ConfidenceVeryLow {
			out.RiskWarnings = append(out.RiskWarnings, noTradeWarning)
		}
	}

	out.Disclaimer = consts.Disclaimer
	return out
}

func hasMarker(s string) bool {
	s = strings.ToLower(s)
	for _, m := range missingDataMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func anyHasMarker(list []string) bool {
	for _, s := range list {
		if hasMarker(s) {
			return true
		}
	}
	return false
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

package flows

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/dyike/QuantumGPT/models"
)

var (
	// ErrEmptyOutput means the model produced no content at all.
	ErrEmptyOutput = errors.New("model returned no output")
	// ErrInvalidOutput means the content does not satisfy the output schema.
	ErrInvalidOutput = errors.New("model output does not match schema")
)

// looseFloat accepts a JSON number, a numeric string or null.
type looseFloat struct {
	v *float64
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		f.v = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
		if s == "" || strings.EqualFold(s, "null") {
			f.v = nil
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		f.v = &n
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	f.v = &n
	return nil
}

func (f *looseFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	return f.v
}

// RawStrategy is the model's strategy output before normalization. Pointer
// fields distinguish absent from zero.
type RawStrategy struct {
	TradePossible       *bool       `json:"tradePossible"`
	SuggestedPosition   *string     `json:"suggestedPosition"`
	StrategyExplanation *string     `json:"strategyExplanation"`
	CurrentPrice        *looseFloat `json:"currentPrice"`
	EntryPoint          *looseFloat `json:"entryPoint"`
	ExitPoint           *looseFloat `json:"exitPoint"`
	StopLossLevel       *looseFloat `json:"stopLossLevel"`
	ProfitTarget        *looseFloat `json:"profitTarget"`
	ConfidenceLevel     *string     `json:"confidenceLevel"`
	RiskWarnings        []string    `json:"riskWarnings"`
	Disclaimer          *string     `json:"disclaimer"`
}

// ParseStrategy extracts and checks the strategy JSON from a model message.
func ParseStrategy(msg *schema.Message) (*RawStrategy, error) {
	body, err := extractJSON(msg)
	if err != nil {
		return nil, err
	}
	var raw RawStrategy
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if raw.TradePossible == nil {
		return nil, fmt.Errorf("%w: tradePossible missing", ErrInvalidOutput)
	}
	if raw.SuggestedPosition == nil || !models.Position(*raw.SuggestedPosition).Valid() {
		return nil, fmt.Errorf("%w: suggestedPosition %v", ErrInvalidOutput, deref(raw.SuggestedPosition))
	}
	if raw.StrategyExplanation == nil {
		return nil, fmt.Errorf("%w: strategyExplanation missing", ErrInvalidOutput)
	}
	if raw.ConfidenceLevel != nil && *raw.ConfidenceLevel != "" && !models.Confidence(*raw.ConfidenceLevel).Valid() {
		return nil, fmt.Errorf("%w: confidenceLevel %q", ErrInvalidOutput, *raw.ConfidenceLevel)
	}
	return &raw, nil
}

type rawAsset struct {
	Symbol     string      `json:"symbol"`
	Summary    string      `json:"summary"`
	Price      *looseFloat `json:"price"`
	Volume     *looseFloat `json:"volume"`
	RecentNews string      `json:"recentNews"`
}

type rawScreener struct {
	Results *[]rawAsset `json:"results"`
}

// ParseScreener extracts the screener JSON from a model message.
func ParseScreener(msg *schema.Message) (*models.ScreenerResult, error) {
	body, err := extractJSON(msg)
	if err != nil {
		return nil, err
	}
	var raw rawScreener
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if raw.Results == nil {
		return nil, fmt.Errorf("%w: results missing", ErrInvalidOutput)
	}

	out := &models.ScreenerResult{Results: make([]models.ScreenedAsset, 0, len(*raw.Results))}
	for i, a := range *raw.Results {
		symbol := strings.ToUpper(strings.TrimSpace(a.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("%w: results[%d].symbol missing", ErrInvalidOutput, i)
		}
		out.Results = append(out.Results, models.ScreenedAsset{
			Symbol:     symbol,
			Summary:    a.Summary,
			Price:      a.Price.ptr(),
			Volume:     a.Volume.ptr(),
			RecentNews: a.RecentNews,
		})
	}
	return out, nil
}

// extractJSON returns the first JSON object in the message content,
// tolerating markdown fences and surrounding prose.
func extractJSON(msg *schema.Message) (string, error) {
	if msg == nil {
		return "", ErrEmptyOutput
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", ErrEmptyOutput
	}
	// decode the first complete object; trailing prose may hold stray braces
	for i := 0; i < len(content); i++ {
		off := strings.IndexByte(content[i:], '{')
		if off < 0 {
			break
		}
		i += off
		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(content[i:])).Decode(&obj); err == nil {
			return string(obj), nil
		}
	}
	return "", fmt.Errorf("%w: no JSON object in %q", ErrInvalidOutput, preview(content))
}

func preview(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

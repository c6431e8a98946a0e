package flows

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestParseStrategyLenient(t *testing.T) {
	body := "Here you go:\n```json\n{\"tradePossible\": true, \"suggestedPosition\": \"Long\", \"strategyExplanation\": \"x\", \"entryPoint\": \"$1,250.5\", \"exitPoint\": null}\n```"
	raw, err := ParseStrategy(schema.AssistantMessage(body, nil))
	if err != nil {
		t.Fatalf("ParseStrategy: %v", err)
	}
	if v := raw.EntryPoint.ptr(); v == nil || *v != 1250.5 {
		t.Fatalf("entryPoint %v", v)
	}
	if raw.ExitPoint.ptr() != nil {
		t.Fatalf("exitPoint should be null")
	}
	if raw.ProfitTarget.ptr() != nil {
		t.Fatalf("absent profitTarget should be nil")
	}
}

func TestParseStrategyIgnoresTrailingBraces(t *testing.T) {
	cases := map[string]string{
		"prose after fence": "```json\n{\"tradePossible\": false, \"suggestedPosition\": \"None\", \"strategyExplanation\": \"wait\"}\n```\nnote: {risk} is elevated",
		"braces before":     "Using {template}: {\"tradePossible\": false, \"suggestedPosition\": \"None\", \"strategyExplanation\": \"wait\"}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := ParseStrategy(schema.AssistantMessage(body, nil))
			if err != nil {
				t.Fatalf("ParseStrategy: %v", err)
			}
			if raw.StrategyExplanation == nil || *raw.StrategyExplanation != "wait" {
				t.Fatalf("explanation = %v", raw.StrategyExplanation)
			}
		})
	}
}

func TestParseStrategyRejects(t *testing.T) {
	cases := map[string]struct {
		body string
		want error
	}{
		"empty":          {"  ", ErrEmptyOutput},
		"no object":      {"no json here", ErrInvalidOutput},
		"missing trade":  {`{"suggestedPosition": "Long", "strategyExplanation": "x"}`, ErrInvalidOutput},
		"bad position":   {`{"tradePossible": true, "suggestedPosition": "Up", "strategyExplanation": "x"}`, ErrInvalidOutput},
		"bad confidence": {`{"tradePossible": true, "suggestedPosition": "Long", "strategyExplanation": "x", "confidenceLevel": "Sure"}`, ErrInvalidOutput},
		"bad number":     {`{"tradePossible": true, "suggestedPosition": "Long", "strategyExplanation": "x", "entryPoint": "soon"}`, ErrInvalidOutput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStrategy(schema.AssistantMessage(tc.body, nil))
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := ParseStrategy(nil); !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("nil message: %v", err)
	}
}

func TestParseScreener(t *testing.T) {
	body := `{"results": [{"symbol": "pepe", "summary": "meme", "price": 0.0000123, "recentNews": "listing"}, {"symbol": "ARB", "summary": "l2", "volume": "5000"}]}`
	res, err := ParseScreener(schema.AssistantMessage(body, nil))
	if err != nil {
		t.Fatalf("ParseScreener: %v", err)
	}
	if len(res.Results) != 2 || res.Results[0].Symbol != "PEPE" {
		t.Fatalf("results %+v", res.Results)
	}
	if res.Results[0].Volume != nil || res.Results[1].Price != nil {
		t.Fatalf("absent figures should stay nil")
	}
	if *res.Results[1].Volume != 5000 {
		t.Fatalf("volume %v", *res.Results[1].Volume)
	}

	for _, bad := range []string{`{"items": []}`, `{"results": [{"summary": "no symbol"}]}`} {
		if _, err := ParseScreener(schema.AssistantMessage(bad, nil)); !errors.Is(err, ErrInvalidOutput) {
			t.Fatalf("%s: got %v", bad, err)
		}
	}
}

package models

import (
	"strings"
)

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
)

func (s Sentiment) Valid() bool {
	switch s {
	case "", SentimentBullish, SentimentBearish:
		return true
	}
	return false
}

type Position string

const (
	PositionLong  Position = "Long"
	PositionShort Position = "Short"
	PositionNone  Position = "None"
)

func (p Position) Valid() bool {
	switch p {
	case PositionLong, PositionShort, PositionNone:
		return true
	}
	return false
}

type Confidence string

const (
	ConfidenceHigh    Confidence = "High"
	ConfidenceMedium  Confidence = "Medium"
	ConfidenceLow     Confidence = "Low"
	ConfidenceVeryLow Confidence = "Very Low - Risk Warning"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceVeryLow:
		return true
	}
	return false
}

type StrategyRequest struct {
	Cryptocurrency string        `json:"cryptocurrency"`
	RiskTolerance  RiskTolerance `json:"riskTolerance"`
	Sentiment      Sentiment     `json:"sentiment,omitempty"`
}

// Normalize trims and upper-cases the ticker and lower-cases the enums.
func (r StrategyRequest) Normalize() StrategyRequest {
	r.Cryptocurrency = strings.ToUpper(strings.TrimSpace(r.Cryptocurrency))
	r.RiskTolerance = RiskTolerance(strings.ToLower(strings.TrimSpace(string(r.RiskTolerance))))
	r.Sentiment = Sentiment(strings.ToLower(strings.TrimSpace(string(r.Sentiment))))
	return r
}

func (r StrategyRequest) Validate() error {
	var v ValidationError
	if r.Cryptocurrency == "" {
		v.Add("cryptocurrency", "Cryptocurrency symbol is required")
	} else if len(r.Cryptocurrency) > 30 {
		v.Add("cryptocurrency", "Cryptocurrency symbol is too long")
	}
	if !r.RiskTolerance.Valid() {
		v.Add("riskTolerance", "Risk tolerance must be one of low, medium, high")
	}
	if !r.Sentiment.Valid() {
		v.Add("sentiment", "Sentiment must be bullish or bearish")
	}
	return v.OrNil()
}

type StrategyResult struct {
	TradePossible       bool       `json:"tradePossible"`
	SuggestedPosition   Position   `json:"suggestedPosition"`
	StrategyExplanation string     `json:"strategyExplanation"`
	CurrentPrice        *float64   `json:"currentPrice"`
	EntryPoint          *float64   `json:"entryPoint"`
	ExitPoint           *float64   `json:"exitPoint"`
	StopLossLevel       *float64   `json:"stopLossLevel"`
	ProfitTarget        *float64   `json:"profitTarget"`
	ConfidenceLevel     Confidence `json:"confidenceLevel"`
	RiskWarnings        []string   `json:"riskWarnings"`
	Disclaimer          string     `json:"disclaimer"`
}

// ClearPrices drops every suggested price level.
func (s *StrategyResult) ClearPrices() {
	s.EntryPoint = nil
	s.ExitPoint = nil
	s.StopLossLevel = nil
	s.ProfitTarget = nil
}

package models

import (
	"strings"
	"time"
)

type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

func (c AlertCondition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow
}

type Alert struct {
	ID          string         `json:"id"`
	Symbol      string         `json:"symbol"`
	Condition   AlertCondition `json:"condition"`
	TargetPrice float64        `json:"targetPrice"`
	IsActive    bool           `json:"isActive"`
}

// Hit reports whether price crosses the alert threshold. Equality is not a hit.
func (a Alert) Hit(price float64) bool {
	switch a.Condition {
	case ConditionAbove:
		return price > a.TargetPrice
	case ConditionBelow:
		return price < a.TargetPrice
	}
	return false
}

type AlertInput struct {
	Symbol      string         `json:"symbol"`
	Condition   AlertCondition `json:"condition"`
	TargetPrice float64        `json:"targetPrice"`
	IsActive    *bool          `json:"isActive,omitempty"`
}

func (in AlertInput) Normalize() AlertInput {
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	in.Condition = AlertCondition(strings.ToLower(strings.TrimSpace(string(in.Condition))))
	return in
}

func (in AlertInput) Validate() error {
	var v ValidationError
	if in.Symbol == "" {
		v.Add("symbol", "Symbol is required")
	}
	if !in.Condition.Valid() {
		v.Add("condition", "Condition must be above or below")
	}
	if in.TargetPrice <= 0 {
		v.Add("targetPrice", "Target price must be a positive number")
	}
	return v.OrNil()
}

type AlertTrigger struct {
	AlertID      string         `json:"alertId"`
	Symbol       string         `json:"symbol"`
	Condition    AlertCondition `json:"condition"`
	TargetPrice  float64        `json:"targetPrice"`
	CurrentPrice float64        `json:"currentPrice"`
	Message      string         `json:"message"`
	ClientID     string         `json:"clientId"`
	TriggeredAt  time.Time      `json:"triggeredAt"`
}

package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/QuantumGPT/models"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.-]{1,30}$`)

// PromptForSymbol prompts for a cryptocurrency ticker.
func PromptForSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Enter the cryptocurrency symbol (e.g., BTC, ETH, SOL):",
		Help:    "Ticker of the asset to build a strategy for",
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("symbol cannot be empty")
		}
		if !symbolPattern.MatchString(str) {
			return fmt.Errorf("invalid symbol (letters, numbers, dots and hyphens, max 30)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ToUpper(symbol)), nil
}

func PromptForRisk() (models.RiskTolerance, error) {
	var risk string
	prompt := &survey.Select{
		Message: "Select your risk tolerance:",
		Options: []string{string(models.RiskLow), string(models.RiskMedium), string(models.RiskHigh)},
		Default: string(models.RiskMedium),
	}
	if err := survey.AskOne(prompt, &risk); err != nil {
		return "", err
	}
	return models.RiskTolerance(risk), nil
}

func PromptForSentiment() (models.Sentiment, error) {
	const neutral = "no preference"
	var sentiment string
	prompt := &survey.Select{
		Message: "Select your market sentiment:",
		Options: []string{neutral, string(models.SentimentBullish), string(models.SentimentBearish)},
		Default: neutral,
	}
	if err := survey.AskOne(prompt, &sentiment); err != nil {
		return "", err
	}
	if sentiment == neutral {
		return "", nil
	}
	return models.Sentiment(sentiment), nil
}

// PromptForCriteria prompts for screener criteria within the accepted length.
func PromptForCriteria() (string, error) {
	var criteria string
	prompt := &survey.Multiline{
		Message: "Describe what you are looking for:",
		Help:    fmt.Sprintf("Between %d and %d characters", models.CriteriaMinLen, models.CriteriaMaxLen),
	}
	err := survey.AskOne(prompt, &criteria, survey.WithValidator(func(val interface{}) error {
		n := utf8.RuneCountInString(val.(string))
		if n < models.CriteriaMinLen || n > models.CriteriaMaxLen {
			return fmt.Errorf("criteria must be %d-%d characters (got %d)", models.CriteriaMinLen, models.CriteriaMaxLen, n)
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return criteria, nil
}

// PromptForAlert collects a new price alert.
func PromptForAlert() (models.AlertInput, error) {
	answers := struct {
		Symbol    string
		Condition string
		Price     string
	}{}
	questions := []*survey.Question{
		{
			Name:     "symbol",
			Prompt:   &survey.Input{Message: "Symbol:"},
			Validate: survey.Required,
		},
		{
			Name: "condition",
			Prompt: &survey.Select{
				Message: "Notify when the price is:",
				Options: []string{string(models.ConditionAbove), string(models.ConditionBelow)},
			},
		},
		{
			Name:   "price",
			Prompt: &survey.Input{Message: "Target price (USD):"},
			Validate: func(val interface{}) error {
				v, err := strconv.ParseFloat(strings.TrimSpace(val.(string)), 64)
				if err != nil || v <= 0 {
					return fmt.Errorf("enter a positive number")
				}
				return nil
			},
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return models.AlertInput{}, err
	}
	price, _ := strconv.ParseFloat(strings.TrimSpace(answers.Price), 64)
	return models.AlertInput{
		Symbol:      answers.Symbol,
		Condition:   models.AlertCondition(answers.Condition),
		TargetPrice: price,
	}, nil
}

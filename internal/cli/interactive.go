package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/dyike/QuantumGPT/models"
	"github.com/dyike/QuantumGPT/pkg/app"
)

const (
	menuStrategy = "Trading strategy"
	menuScreener = "AI screener"
	menuOverview = "Market overview"
	menuTrending = "Trending coins"
	menuAlerts   = "Price alerts"
	menuAddAlert = "New price alert"
	menuExit     = "Exit"
)

// runInteractiveMode drives a survey menu over a single runtime.
func runInteractiveMode(ctx context.Context, flags *rootFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	DisplayWelcomeBanner()

	rt, err := openRuntime(ctx, flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	for {
		var choice string
		prompt := &survey.Select{
			Message: "What would you like to do?",
			Options: []string{menuStrategy, menuScreener, menuOverview, menuTrending, menuAlerts, menuAddAlert, menuExit},
		}
		if err := survey.AskOne(prompt, &choice); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}
		if choice == menuExit {
			fmt.Println("Goodbye.")
			return nil
		}
		if err := runMenuItem(ctx, rt, flags.clientID, choice); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				continue
			}
			printError(err)
		}
		fmt.Println()
	}
}

func runMenuItem(ctx context.Context, rt *app.Runtime, clientID, choice string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	switch choice {
	case menuStrategy:
		symbol, err := PromptForSymbol()
		if err != nil {
			return err
		}
		risk, err := PromptForRisk()
		if err != nil {
			return err
		}
		sentiment, err := PromptForSentiment()
		if err != nil {
			return err
		}
		fmt.Println(mutedStyle.Render("Generating strategy..."))
		res, err := rt.Suggest(ctx, models.StrategyRequest{Cryptocurrency: symbol, RiskTolerance: risk, Sentiment: sentiment})
		if err != nil {
			return err
		}
		fmt.Print(RenderStrategy(symbol, res))

	case menuScreener:
		criteria, err := PromptForCriteria()
		if err != nil {
			return err
		}
		fmt.Println(mutedStyle.Render("Screening..."))
		res, err := rt.Screen(ctx, models.ScreenerRequest{Criteria: criteria})
		if err != nil {
			return err
		}
		fmt.Print(RenderScreener(res))

	case menuOverview:
		fmt.Print(RenderOverview(rt.Board().Overview(ctx)))

	case menuTrending:
		coins, err := rt.Board().Trending(ctx)
		if err != nil {
			return err
		}
		fmt.Print(RenderTrending(coins))

	case menuAlerts:
		list, err := rt.Alerts().List(ctx, clientID)
		if err != nil {
			return err
		}
		fmt.Print(RenderAlerts(list))

	case menuAddAlert:
		in, err := PromptForAlert()
		if err != nil {
			return err
		}
		al, err := rt.Alerts().Create(ctx, clientID, in)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Created alert " + al.ID))
	}
	return nil
}

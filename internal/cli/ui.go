package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/dyike/QuantumGPT/config"
	"github.com/dyike/QuantumGPT/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(80)

	warningStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 2).
			Width(80)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(18)

	longStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	shortStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

const notAvailable = "N/A"

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner() {
	banner := `
  ___                    _                    ____ ____ _____
 / _ \ _   _  __ _ _ __ | |_ _   _ _ __ ___  / ___|  _ \_   _|
| | | | | | |/ _' | '_ \| __| | | | '_ ' _ \| |  _| |_) || |
| |_| | |_| | (_| | | | | |_| |_| | | | | | | |_| |  __/ | |
 \__\_\\__,_|\__,_|_| |_|\__|\__,_|_| |_| |_|\____|_|    |_|
`
	welcomeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Width(80)

	taglineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3B82F6")).
		Italic(true).
		Width(80).
		MarginBottom(1)

	fmt.Println(welcomeStyle.Render(banner))
	fmt.Println(taglineStyle.Render("AI crypto strategy and screener"))
}

func formatUSD(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return "$" + decimal.NewFromFloat(*v).StringFixed(2)
}

func formatPercent(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return decimal.NewFromFloat(*v).StringFixed(2) + "%"
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func positionLabel(p models.Position) string {
	switch p {
	case models.PositionLong:
		return longStyle.Render(string(p))
	case models.PositionShort:
		return shortStyle.Render(string(p))
	default:
		return mutedStyle.Render(string(p))
	}
}

// RenderStrategy renders a strategy result as a card followed by its
// warnings and the disclaimer.
func RenderStrategy(symbol string, res *models.StrategyResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Strategy: "+symbol) + "\n")

	var card strings.Builder
	card.WriteString(row("Trade possible", fmt.Sprintf("%t", res.TradePossible)))
	card.WriteString(row("Position", positionLabel(res.SuggestedPosition)))
	card.WriteString(row("Confidence", string(res.ConfidenceLevel)))
	card.WriteString(row("Current price", formatUSD(res.CurrentPrice)))
	if res.TradePossible {
		card.WriteString(row("Entry", formatUSD(res.EntryPoint)))
		card.WriteString(row("Exit", formatUSD(res.ExitPoint)))
		card.WriteString(row("Stop loss", formatUSD(res.StopLossLevel)))
		card.WriteString(row("Profit target", formatUSD(res.ProfitTarget)))
	}
	card.WriteString("\n" + res.StrategyExplanation)
	b.WriteString(cardStyle.Render(card.String()) + "\n")

	if len(res.RiskWarnings) > 0 {
		var w strings.Builder
		w.WriteString("Risk warnings\n")
		for _, warn := range res.RiskWarnings {
			w.WriteString("  - " + warn + "\n")
		}
		b.WriteString(warningStyle.Render(strings.TrimRight(w.String(), "\n")) + "\n")
	}
	b.WriteString(mutedStyle.Width(80).Render(res.Disclaimer) + "\n")
	return b.String()
}

func RenderScreener(res *models.ScreenerResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Screener: %d matches", len(res.Results))) + "\n")
	if len(res.Results) == 0 {
		b.WriteString(mutedStyle.Render("No assets matched the criteria.") + "\n")
		return b.String()
	}
	for _, a := range res.Results {
		var card strings.Builder
		card.WriteString(longStyle.Render(a.Symbol) + "\n")
		card.WriteString(row("Price", formatUSD(a.Price)))
		card.WriteString(row("Volume", formatUSD(a.Volume)))
		card.WriteString("\n" + a.Summary)
		if a.RecentNews != "" {
			card.WriteString("\n" + mutedStyle.Render(a.RecentNews))
		}
		b.WriteString(cardStyle.Render(card.String()) + "\n")
	}
	return b.String()
}

func RenderSnapshot(snap *models.MarketSnapshot) string {
	if snap == nil {
		return mutedStyle.Render("No market data available.") + "\n"
	}
	var card strings.Builder
	card.WriteString(longStyle.Render(snap.Symbol) + "\n")
	card.WriteString(row("Price", formatUSD(snap.Price)))
	card.WriteString(row("Volume 24h", formatUSD(snap.Volume24h)))
	card.WriteString(row("Change 24h", formatPercent(snap.PriceChange24hPercent)))
	return cardStyle.Render(strings.TrimRight(card.String(), "\n")) + "\n"
}

func RenderOverview(ov *models.MarketOverview) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Market overview") + "\n")
	for _, snap := range ov.Snapshots {
		if snap == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("%-8s %14s %10s\n", snap.Symbol, formatUSD(snap.Price), formatPercent(snap.PriceChange24hPercent)))
	}
	if ov.UpdatedAt != "" {
		b.WriteString(mutedStyle.Render("updated "+ov.UpdatedAt) + "\n")
	}
	return b.String()
}

func RenderTrending(coins []models.TrendingCoin) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Trending") + "\n")
	for _, c := range coins {
		b.WriteString(fmt.Sprintf("#%-4d %-8s %-24s %s\n", c.Rank, c.Symbol, c.Name, formatUSD(c.PriceUSD)))
	}
	return b.String()
}

func RenderWatchlist(symbols []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Watchlist") + "\n")
	for _, s := range symbols {
		b.WriteString("  " + s + "\n")
	}
	return b.String()
}

func RenderAlerts(alerts []models.Alert) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Price alerts") + "\n")
	if len(alerts) == 0 {
		b.WriteString(mutedStyle.Render("No alerts.") + "\n")
		return b.String()
	}
	for _, al := range alerts {
		status := successStyle.Render("active")
		if !al.IsActive {
			status = mutedStyle.Render("paused")
		}
		target := al.TargetPrice
		b.WriteString(fmt.Sprintf("%s  %-8s %-5s %12s  %s\n", al.ID, al.Symbol, al.Condition, formatUSD(&target), status))
	}
	return b.String()
}

// RenderConfig lists every config field with secrets masked.
func RenderConfig(cfg config.Config, path string) string {
	fields := map[string]string{
		"llm_provider":           cfg.LLMProvider,
		"llm_model":              cfg.LLMModel,
		"backend_url":            cfg.BackendURL,
		"agent_max_step":         fmt.Sprint(cfg.MaxStep),
		"debug":                  fmt.Sprint(cfg.Debug),
		"eino_debug_enabled":     fmt.Sprint(cfg.EinoDebugEnabled),
		"market_provider":        cfg.MarketProvider,
		"messari_api_key":        mask(cfg.MessariAPIKey),
		"deepseek_api_key":       mask(cfg.DeepSeekAPIKey),
		"openai_api_key":         mask(cfg.OpenAIAPIKey),
		"coingecko_base_url":     cfg.CoinGeckoBaseURL,
		"overview_symbols":       strings.Join(cfg.OverviewSymbols, ","),
		"cache_enabled":          fmt.Sprint(cfg.CacheEnabled),
		"screener_tools":         fmt.Sprint(cfg.ScreenerTools),
		"store_backend":          cfg.StoreBackend,
		"data_dir":               cfg.DataDir,
		"listen_addr":            cfg.ListenAddr,
		"overview_schedule":      cfg.OverviewSchedule,
		"alert_schedule":         cfg.AlertSchedule,
		"market_timeout_seconds": fmt.Sprint(cfg.MarketTimeoutSec),
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Configuration") + "\n")
	b.WriteString(mutedStyle.Render(path) + "\n\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%-24s %s\n", k, fields[k]))
	}
	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return mutedStyle.Render("not configured")
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func printError(err error) {
	fmt.Println(errorStyle.Render("Error: " + err.Error()))
}

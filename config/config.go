package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	DataDir string `json:"data_dir"`

	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
	BackendURL  string `json:"backend_url"`
	MaxTokens   int    `json:"llm_max_tokens"`
	MaxStep     int    `json:"agent_max_step"`
	Debug       bool   `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`

	// AI Model API Keys
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key"`

	// Market data
	MarketProvider   string   `json:"market_provider"`
	MessariAPIKey    string   `json:"messari_api_key"`
	MessariBaseURL   string   `json:"messari_base_url"`
	CoinGeckoBaseURL string   `json:"coingecko_base_url"`
	MarketTimeoutSec int      `json:"market_timeout_seconds"`
	OverviewSymbols  []string `json:"overview_symbols"`
	CacheEnabled     bool     `json:"cache_enabled"`

	// Screener binds the market data tool when true.
	ScreenerTools bool `json:"screener_tools"`

	StoreBackend     string `json:"store_backend"`
	ListenAddr       string `json:"listen_addr"`
	OverviewSchedule string `json:"overview_schedule"`
	AlertSchedule    string `json:"alert_schedule"`
}

const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"

	MarketMessari = "messari"
	MarketYahoo   = "yahoo"
	MarketMock    = "mock"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	return DefaultConfigWithRoot(currentDir)
}

// DefaultConfigWithRoot builds defaults rooted at dir, then applies .env and
// environment overrides.
func DefaultConfigWithRoot(root string) *Config {
	cfg := &Config{
		DataDir: filepath.Join(root, "data"),

		LLMProvider: ProviderDeepSeek,
		LLMModel:    "deepseek-chat",
		BackendURL:  "",
		MaxTokens:   4096,
		MaxStep:     12,
		Debug:       false,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,

		MarketProvider:   MarketMessari,
		MessariBaseURL:   "https://data.messari.io/api/v1",
		CoinGeckoBaseURL: "https://api.coingecko.com/api/v3",
		MarketTimeoutSec: 30,
		OverviewSymbols:  []string{"BTC", "ETH", "SOL", "ADA"},
		CacheEnabled:     true,

		ScreenerTools: true,

		StoreBackend:     StoreSQLite,
		ListenAddr:       ":8080",
		OverviewSchedule: "@every 60s",
		AlertSchedule:    "@every 5s",
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("LLM_MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("AGENT_MAX_STEP"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxStep = v
		}
	}

	if val := os.Getenv("QUANTUMGPT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}

	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}

	if val := os.Getenv("MARKET_PROVIDER"); val != "" {
		c.MarketProvider = strings.ToLower(val)
	}
	if val := os.Getenv("MESSARI_API_KEY"); val != "" {
		c.MessariAPIKey = val
	}
	if val := os.Getenv("COINDESK_API_KEY"); val != "" {
		c.MessariAPIKey = val
	}
	if val := os.Getenv("MESSARI_BASE_URL"); val != "" {
		c.MessariBaseURL = val
	}
	if val := os.Getenv("COINGECKO_BASE_URL"); val != "" {
		c.CoinGeckoBaseURL = val
	}
	if val := os.Getenv("MARKET_TIMEOUT_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MarketTimeoutSec = v
		}
	}
	if val := os.Getenv("OVERVIEW_SYMBOLS"); val != "" {
		c.OverviewSymbols = splitList(val)
	}
	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}

	if val := os.Getenv("SCREENER_TOOLS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.ScreenerTools = enabled
		}
	}

	if val := os.Getenv("STORE_BACKEND"); val != "" {
		c.StoreBackend = strings.ToLower(val)
	}
	if val := os.Getenv("LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}
	if val := os.Getenv("OVERVIEW_SCHEDULE"); val != "" {
		c.OverviewSchedule = val
	}
	if val := os.Getenv("ALERT_SCHEDULE"); val != "" {
		c.AlertSchedule = val
	}
}

// Validate checks enum fields, ranges and cron expressions.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case ProviderDeepSeek, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unsupported llm_provider %q", c.LLMProvider))
	}
	switch c.MarketProvider {
	case MarketMessari, MarketYahoo, MarketMock:
	default:
		errs = append(errs, fmt.Errorf("unsupported market_provider %q", c.MarketProvider))
	}
	switch c.StoreBackend {
	case StoreMemory, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported store_backend %q", c.StoreBackend))
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		errs = append(errs, errors.New("llm_model is required"))
	}
	if c.MaxStep <= 0 {
		errs = append(errs, errors.New("agent_max_step must be positive"))
	}
	if c.MaxTokens < 0 {
		errs = append(errs, errors.New("llm_max_tokens must not be negative"))
	}
	if c.MarketTimeoutSec <= 0 {
		errs = append(errs, errors.New("market_timeout_seconds must be positive"))
	}
	if c.EinoDebugPort <= 0 || c.EinoDebugPort > 65535 {
		errs = append(errs, fmt.Errorf("eino_debug_port %d out of range", c.EinoDebugPort))
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if _, err := cron.ParseStandard(c.OverviewSchedule); err != nil {
		errs = append(errs, fmt.Errorf("overview_schedule: %w", err))
	}
	if _, err := cron.ParseStandard(c.AlertSchedule); err != nil {
		errs = append(errs, fmt.Errorf("alert_schedule: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// HasMarketKey reports whether the live Messari provider can be tried.
func (c *Config) HasMarketKey() bool {
	return strings.TrimSpace(c.MessariAPIKey) != ""
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "quantumgpt.db")
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

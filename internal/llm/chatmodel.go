package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/QuantumGPT/config"
)

const deepseekOpenAIBase = "https://api.deepseek.com/v1"

// NewChatModel creates the tool-calling chat model selected by cfg.
func NewChatModel(ctx context.Context, cfg config.Config) (model.ToolCallingChatModel, error) {
	switch cfg.LLMProvider {
	case config.ProviderDeepSeek:
		if cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set")
		}
		dcfg := &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: cfg.MaxTokens,
		}
		if cfg.BackendURL != "" {
			dcfg.BaseURL = cfg.BackendURL
		}
		cm, err := deepseek.NewChatModel(ctx, dcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
		}
		return cm, nil

	case config.ProviderOpenAI:
		apiKey := cfg.OpenAIAPIKey
		if apiKey == "" {
			// DeepSeek speaks the OpenAI protocol, so its key works with a DeepSeek base URL
			apiKey = cfg.DeepSeekAPIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		baseURL := cfg.BackendURL
		if baseURL == "" && cfg.OpenAIAPIKey == "" {
			baseURL = deepseekOpenAIBase
		}
		maxTokens := cfg.MaxTokens
		ocfg := &openai.ChatModelConfig{
			BaseURL: baseURL,
			APIKey:  apiKey,
			Model:   cfg.LLMModel,
		}
		if maxTokens > 0 {
			ocfg.MaxTokens = &maxTokens
		}
		cm, err := openai.NewChatModel(ctx, ocfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
		}
		return cm, nil
	}
	return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
}

package ai

import (
	"fmt"

	"github.com/kyrieos/intelligence-engine/internal/ai/anthropic"
	"github.com/kyrieos/intelligence-engine/internal/ai/llm"
	"github.com/kyrieos/intelligence-engine/internal/ai/ollama"
	"github.com/kyrieos/intelligence-engine/internal/ai/openai"
	"github.com/kyrieos/intelligence-engine/internal/ai/vllm"
	"github.com/kyrieos/intelligence-engine/internal/config"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// NewProvider constructs the narrative provider selected by config.
// Called once at server startup. Provider "none" (or empty) disables
// narratives and returns a nil provider.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	opts := llm.Options{
		Timeout:           cfg.InferenceTimeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}

	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama, opts), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM, opts), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI, opts), nil
	case "openrouter":
		return openai.NewCompatible("openrouter", cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, opts), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic, opts), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of none, ollama, vllm, openai, openrouter, anthropic", cfg.Provider)
	}
}

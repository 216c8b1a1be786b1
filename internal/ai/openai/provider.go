package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kyrieos/intelligence-engine/internal/ai/llm"
	"github.com/kyrieos/intelligence-engine/internal/config"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// Provider implements models.AIProvider against any OpenAI-compatible
// /chat/completions endpoint (OpenAI, OpenRouter, vLLM).
type Provider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *llm.Client
}

// NewProvider creates a Provider for api.openai.com or a compatible base URL.
func NewProvider(cfg config.OpenAIConfig, opts llm.Options) *Provider {
	return NewCompatible("openai", cfg.BaseURL, cfg.APIKey, cfg.Model, opts)
}

// NewCompatible creates a Provider for another OpenAI-compatible service.
// baseURL must include the version prefix, e.g. https://openrouter.ai/api/v1.
func NewCompatible(name, baseURL, apiKey, model string, opts llm.Options) *Provider {
	return &Provider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  llm.NewClient(opts),
	}
}

func (p *Provider) Name() string { return p.name }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Narrate(ctx context.Context, req models.NarrativeRequest) (string, error) {
	user, err := llm.UserPrompt(req)
	if err != nil {
		return "", err
	}

	body := chatRequest{
		Model:       p.model,
		MaxTokens:   llm.MaxTokens,
		Temperature: llm.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: user},
		},
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var resp chatResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/chat/completions", headers, body, &resp); err != nil {
		return "", fmt.Errorf("%s narrate: %w", p.name, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%s narrate: %w: empty completion", p.name, llm.ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ models.AIProvider = (*Provider)(nil)

package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/kyrieos/intelligence-engine/internal/ai/llm"
	"github.com/kyrieos/intelligence-engine/internal/config"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

const apiVersion = "2023-06-01"

// Provider implements models.AIProvider using the Anthropic Messages API.
type Provider struct {
	baseURL string
	apiKey  string
	model   string
	client  *llm.Client
}

func NewProvider(cfg config.AnthropicConfig, opts llm.Options) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  llm.NewClient(opts),
	}
}

func (p *Provider) Name() string { return "anthropic" }

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *Provider) Narrate(ctx context.Context, req models.NarrativeRequest) (string, error) {
	user, err := llm.UserPrompt(req)
	if err != nil {
		return "", err
	}

	body := messagesRequest{
		Model:       p.model,
		MaxTokens:   llm.MaxTokens,
		System:      llm.SystemPrompt,
		Temperature: llm.Temperature,
		Messages:    []message{{Role: "user", Content: user}},
	}
	headers := map[string]string{
		"X-API-Key":         p.apiKey,
		"Anthropic-Version": apiVersion,
	}

	var resp messagesResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/v1/messages", headers, body, &resp); err != nil {
		return "", fmt.Errorf("anthropic narrate: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("anthropic narrate: %w: empty content", llm.ErrInvalidResponse)
	}
	return sb.String(), nil
}

var _ models.AIProvider = (*Provider)(nil)

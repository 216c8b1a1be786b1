package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/kyrieos/intelligence-engine/internal/ai/llm"
	"github.com/kyrieos/intelligence-engine/internal/config"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// Provider implements models.AIProvider using a local Ollama server.
type Provider struct {
	baseURL string
	model   string
	client  *llm.Client
}

func NewProvider(cfg config.OllamaConfig, opts llm.Options) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  llm.NewClient(opts),
	}
}

func (p *Provider) Name() string { return "ollama" }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func (p *Provider) Narrate(ctx context.Context, req models.NarrativeRequest) (string, error) {
	user, err := llm.UserPrompt(req)
	if err != nil {
		return "", err
	}

	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: user},
		},
		Options: chatOptions{Temperature: llm.Temperature, NumPredict: llm.MaxTokens},
	}

	var resp chatResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/api/chat", nil, body, &resp); err != nil {
		return "", fmt.Errorf("ollama narrate: %w", err)
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", fmt.Errorf("ollama narrate: %w: empty message", llm.ErrInvalidResponse)
	}
	return resp.Message.Content, nil
}

var _ models.AIProvider = (*Provider)(nil)

package vllm

import (
	"strings"

	"github.com/kyrieos/intelligence-engine/internal/ai/llm"
	"github.com/kyrieos/intelligence-engine/internal/ai/openai"
	"github.com/kyrieos/intelligence-engine/internal/config"
)

// NewProvider returns a provider for a self-hosted vLLM server, which serves
// the OpenAI chat API under /v1 and needs no key.
func NewProvider(cfg config.VLLMConfig, opts llm.Options) *openai.Provider {
	return openai.NewCompatible("vllm", strings.TrimRight(cfg.BaseURL, "/")+"/v1", "", cfg.Model, opts)
}

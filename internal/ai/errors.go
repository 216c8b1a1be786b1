package ai

import "github.com/kyrieos/intelligence-engine/internal/ai/llm"

// Provider failures, shared with the provider packages.
var (
	ErrProviderUnavailable = llm.ErrProviderUnavailable
	ErrInferenceTimeout    = llm.ErrInferenceTimeout
	ErrInvalidResponse     = llm.ErrInvalidResponse
)

// Package models contains shared data models used across the intelligence engine.
package models

import "context"

// AIProvider is the interface every narrative LLM integration implements.
// Never call specific AI providers directly; always inject this interface.
type AIProvider interface {
	// Narrate turns a numeric budget analysis into strategic commentary.
	// The text may embed a fenced JSON block; callers must tolerate plain prose.
	Narrate(ctx context.Context, req NarrativeRequest) (string, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// NarrativeRequest is the input to a narrative generation call.
type NarrativeRequest struct {
	WorkspaceID string
	Analysis    AnalysisResult
}

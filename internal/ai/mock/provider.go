package mock

import (
	"context"
	"fmt"

	"github.com/kyrieos/intelligence-engine/internal/ai"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_       string
	NarrateFunc func(ctx context.Context, req models.NarrativeRequest) (string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Narrate(ctx context.Context, req models.NarrativeRequest) (string, error) {
	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, req)
	}
	return "", nil
}

// NewMockProvider returns a MockProvider that answers with a fenced JSON narrative
// reflecting the alerts it was given.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		NarrateFunc: func(_ context.Context, req models.NarrativeRequest) (string, error) {
			health := "Healthy"
			if len(req.Analysis.Alerts) > 0 {
				health = "At Risk"
			}
			return fmt.Sprintf("Mock review for %s.\n```json\n{\"overall_health\": %q, \"financial_summary\": \"mock summary\", \"alerts\": [], \"strategic_advice\": \"none\"}\n```",
				req.WorkspaceID, health), nil
		},
	}
}

// NewTextProvider returns a MockProvider that always replies with text.
func NewTextProvider(text string) *MockProvider {
	return &MockProvider{
		Name_: "mock-text",
		NarrateFunc: func(_ context.Context, _ models.NarrativeRequest) (string, error) {
			return text, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		NarrateFunc: func(_ context.Context, _ models.NarrativeRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		NarrateFunc: func(ctx context.Context, _ models.NarrativeRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)

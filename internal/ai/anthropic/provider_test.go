package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kyrieos/intelligence-engine/internal/ai/anthropic"
	"github.com/kyrieos/intelligence-engine/internal/ai/llm"
	"github.com/kyrieos/intelligence-engine/internal/config"
	"github.com/kyrieos/intelligence-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-API-Key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("Anthropic-Version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, llm.SystemPrompt, body["system"])
		assert.Equal(t, "claude-test", body["model"])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one, "},{"type":"text","text":"part two"}]}`))
	}))
	defer srv.Close()

	p := anthropic.NewProvider(config.AnthropicConfig{BaseURL: srv.URL, APIKey: "sk-ant", Model: "claude-test"}, llm.Options{})
	text, err := p.Narrate(context.Background(), models.NarrativeRequest{WorkspaceID: "ws-1"})
	require.NoError(t, err)
	assert.Equal(t, "part one, part two", text)
	assert.Equal(t, "anthropic", p.Name())
}

func TestNarrate_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	p := anthropic.NewProvider(config.AnthropicConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"}, llm.Options{})
	_, err := p.Narrate(context.Background(), models.NarrativeRequest{})
	assert.ErrorIs(t, err, llm.ErrInvalidResponse)
}

func TestNarrate_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	p := anthropic.NewProvider(config.AnthropicConfig{BaseURL: srv.URL, APIKey: "bad", Model: "m"}, llm.Options{})
	_, err := p.Narrate(context.Background(), models.NarrativeRequest{})
	require.ErrorIs(t, err, llm.ErrInvalidResponse)
	assert.Contains(t, err.Error(), "401")
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"companion-lite/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.AI.APIKey = "test-key"
	cfg.AI.BaseURL = srv.URL
	cfg.AI.Model = "test-model"
	return NewClient(cfg)
}

func TestCompleteSuccess(t *testing.T) {
	var captured completionRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"  Hello there.  "}}]}`)
	})

	text, err := client.Complete(context.Background(), []Message{
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", text)

	// System persona is always the first message
	require.NotEmpty(t, captured.Messages)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, SystemPrompt, captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 220, captured.MaxTokens)
}

func TestCompleteMissingAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	client := NewClient(cfg)

	_, err := client.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCompleteUpstreamError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	})

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteEmptyContent(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"   "}}]}`)
	})

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.ErrorContains(t, err, "empty completion")
}

func TestCompleteNoChoices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.ErrorContains(t, err, "empty completion")
}

func TestProviderDefaults(t *testing.T) {
	tests := []struct {
		provider  string
		wantURL   string
		wantModel string
	}{
		{"openai", "https://api.openai.com/v1", "gpt-4o-mini"},
		{"openrouter", "https://openrouter.ai/api/v1", "openai/gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.AI.Provider = tt.provider
			client := NewClient(cfg)
			assert.Equal(t, tt.wantURL, client.baseURL)
			assert.Equal(t, tt.wantModel, client.model)
		})
	}
}

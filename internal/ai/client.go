package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"companion-lite/config"
)

// SystemPrompt is the fixed companion persona prepended to every request
const SystemPrompt = `You are a calm, empathetic AI companion.
You listen carefully and never judge.
You always acknowledge the user's emotions first.
You speak briefly, warmly, and human-like.
You ask gentle follow-up questions.
You automatically detect the user's language and reply in the same language (Hindi, English, or Hinglish).
You are NOT a therapist or doctor.
If the user expresses self-harm or extreme distress, respond with care and encourage reaching out to trusted people or helplines.`

// ErrMissingAPIKey means no provider credential is configured
var ErrMissingAPIKey = errors.New("missing AI API key")

// Message is one role/content pair sent to the completion provider
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls an OpenAI-compatible chat completions endpoint
type Client struct {
	apiKey  string
	model   string
	baseURL string
	siteURL string
	appName string
	client  *http.Client
}

// NewClient creates a gateway client from configuration. Supported
// providers are "openai" and "openrouter"; both speak the same request
// shape, they differ only in endpoint, default model and extra headers.
func NewClient(cfg *config.Config) *Client {
	provider := strings.ToLower(cfg.AI.Provider)

	baseURL := cfg.AI.BaseURL
	if baseURL == "" {
		if provider == "openrouter" {
			baseURL = "https://openrouter.ai/api/v1"
		} else {
			baseURL = "https://api.openai.com/v1"
		}
	}

	model := cfg.AI.Model
	if model == "" {
		if provider == "openrouter" {
			model = "openai/gpt-4o-mini"
		} else {
			model = "gpt-4o-mini"
		}
	}

	timeout := cfg.AI.Timeout
	if timeout <= 0 {
		timeout = 60
	}

	return &Client{
		apiKey:  cfg.AI.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		siteURL: cfg.AI.SiteURL,
		appName: cfg.AI.AppName,
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the ordered dialogue to the provider and returns the
// trimmed text of the first completion. A single attempt, no retries.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	payload := completionRequest{
		Model:       c.model,
		Temperature: 0.7,
		MaxTokens:   220,
		Messages:    append([]Message{{Role: "system", Content: SystemPrompt}}, messages...),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	// OpenRouter attribution headers, optional
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.appName != "" {
		req.Header.Set("X-Title", c.appName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("completion request failed: %d - %s", resp.StatusCode, string(body))
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse completion response failed: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty completion response")
	}

	return content, nil
}

// Package openrouter implements the ChatClient port against an
// OpenAI-compatible chat-completions endpoint.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prochecka/internal/domain"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// systemPrompt frames the assistant for free-form diabetes health
// conversation. The deterministic risk scoring never goes through the LLM.
const systemPrompt = `You are Prochecka, a friendly and knowledgeable diabetes health assistant. Engage naturally about diabetes, nutrition, exercise and healthy living. Give evidence-based health information, ask clarifying questions when needed, and urge immediate medical attention if emergency signs are mentioned. Never diagnose - only provide general health guidance.`

// Client talks to an OpenRouter (or any OpenAI-compatible) endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// Config holds the settings for a Client. BaseURL and Model fall back to
// OpenRouter defaults when empty; APIKey is required.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// New creates a Client from cfg.
func New(cfg Config, log *zap.SugaredLogger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openrouter: missing api key")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "openai/gpt-3.5-turbo"
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}, nil
}

var _ domain.ChatClient = (*Client)(nil)

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Reply forwards the conversation history and returns the assistant's text.
func (c *Client) Reply(ctx context.Context, history []domain.ChatMessage) (string, error) {
	msgs := make([]wireMessage, 0, len(history)+1)
	msgs = append(msgs, wireMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		role := m.Role
		if role != "user" && role != "assistant" {
			role = "user"
		}
		msgs = append(msgs, wireMessage{Role: role, Content: m.Text})
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("openrouter: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("chat completion failed", "status", resp.StatusCode)
		return "", fmt.Errorf("openrouter: status %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openrouter: decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("openrouter: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openrouter: empty completion")
	}
	return out.Choices[0].Message.Content, nil
}

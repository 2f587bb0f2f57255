// Package llm wraps the optional language-model service used for task extraction.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second
)

// Completer sends fixed instructions plus user text and returns the raw JSON reply.
type Completer interface {
	CompleteJSON(ctx context.Context, instructions, text string) (string, error)
}

// ProviderError wraps provider failures.
type ProviderError struct {
	Provider string
	Message  string
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// OpenAIConfig configures the OpenAI adapter.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// OpenAIClient is a Completer backed by the chat completions API.
type OpenAIClient struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAIClient returns nil when no API key is configured.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAIClient{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

// CompleteJSON asks for a JSON object reply. It makes exactly one attempt.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, instructions, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", ProviderError{Provider: "openai", Message: apiErr.Message}
		}
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ProviderError{Provider: "openai", Message: "empty choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

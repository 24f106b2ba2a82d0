package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inkwell-labs/corpora/internal/models"
)

// Default configuration values for the OpenAI-compatible client.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
)

const systemPrompt = "You are a helpful assistant that answers questions based on provided documents."

const promptTemplate = `Based on the following documents, please answer the user's question. If the answer cannot be found in the documents, please say so.

Documents:
%s

User Question: %s

Answer:`

// Config holds configuration for the OpenAI-compatible answer client.
type Config struct {
	// APIKey is the API key (required).
	APIKey string
	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string
	// Model is the chat model (default: gpt-3.5-turbo).
	Model string
	// MaxTokens caps the generated answer length (default: 500).
	MaxTokens int
	// Temperature controls answer creativity. Nil means the 0.7 default; an
	// explicit 0 is a valid deterministic setting and is kept.
	Temperature *float64
	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Client generates answers through an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates an answer client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("answer: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: temperature,
	}, nil
}

// Generate produces an answer to query grounded in docContext. Transport
// errors, non-2xx responses, and malformed payloads are reported as
// models.ErrProviderFailure.
func (c *Client) Generate(ctx context.Context, query, docContext string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, docContext, query)
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: chat request: %v", models.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", models.ErrProviderFailure, err)
	}
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", models.ErrProviderFailure, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s", models.ErrProviderFailure, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", models.ErrProviderFailure, resp.StatusCode, body)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", models.ErrProviderFailure)
	}
	return out.Choices[0].Message.Content, nil
}

// ModelName returns the configured chat model identifier.
func (c *Client) ModelName() string {
	return c.model
}

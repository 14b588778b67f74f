// Package openai is a minimal chat-completions client for the essay and
// resume guidance features.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params shapes one completion request. JSONMode forces the model to
// return a valid JSON object.
type Params struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

type request struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	Temperature    float64   `json:"temperature"`
	MaxTokens      int       `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type response struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs one chat completion and returns the trimmed assistant
// message.
func (c *Client) Complete(ctx context.Context, p Params) (string, error) {
	if !c.Configured() {
		return "", errors.New("missing OPENAI_API_KEY in backend env")
	}

	body := request{
		Model:       c.cfg.Model,
		Messages:    p.Messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
	if p.JSONMode {
		body.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if payload.Error != nil && payload.Error.Message != "" {
			return "", fmt.Errorf("completion failed: %s", payload.Error.Message)
		}
		return "", fmt.Errorf("completion returned status %d", resp.StatusCode)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return strings.TrimSpace(payload.Choices[0].Message.Content), nil
}

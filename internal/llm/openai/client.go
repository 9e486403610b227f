package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docforms-backend/internal/llm"
	"docforms-backend/internal/shared/telemetry"
)

// DefaultModel is used when LLM_MODEL is unset.
const DefaultModel = "gpt-4o-mini"

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
	maxReplyBytes  = 1 << 20
	temperature    = 0.3
)

// Client implements llm.Summarizer on the Chat Completions endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a compatible gateway or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the transport, including its timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a client for model, or DefaultModel when model is blank.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type completionReply struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("openai: status %d: %s (%s)", e.Status, e.Message, e.Type)
	}
	return fmt.Sprintf("openai: status %d: %s", e.Status, e.Message)
}

// Summarize issues exactly one completion request; failures are not retried.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	prompt := llm.SummaryPrompt(content)
	body := completionRequest{
		Model:    c.model,
		Messages: []message{{Role: "user", Content: prompt}},
	}
	if acceptsTemperature(c.model) {
		t := temperature
		body.Temperature = &t
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("openai read: %w", err)
	}
	reply, err := decodeReply(resp.StatusCode, raw)
	if err != nil {
		return "", err
	}

	choice := reply.Choices[0]
	telemetry.Info("llm.response", map[string]any{
		"provider":          "openai",
		"model":             c.model,
		"prompt_hash":       llm.PromptHash(prompt),
		"prompt_tokens":     reply.Usage.PromptTokens,
		"completion_tokens": reply.Usage.CompletionTokens,
		"finish_reason":     choice.FinishReason,
		"duration_ms":       time.Since(started).Milliseconds(),
	})

	out := strings.TrimSpace(choice.Message.Content)
	if out == "" {
		return "", llm.ErrEmptyOutput
	}
	return out, nil
}

func decodeReply(status int, raw []byte) (completionReply, error) {
	var reply completionReply
	jsonErr := json.Unmarshal(raw, &reply)
	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status, Message: strings.TrimSpace(string(raw))}
		if jsonErr == nil && reply.Error != nil {
			apiErr.Message, apiErr.Type = reply.Error.Message, reply.Error.Type
		}
		return reply, apiErr
	}
	if jsonErr != nil {
		return reply, fmt.Errorf("openai decode: %w", jsonErr)
	}
	if len(reply.Choices) == 0 {
		return reply, llm.ErrEmptyOutput
	}
	return reply, nil
}

// acceptsTemperature is false for reasoning models, which reject any value
// other than their default.
func acceptsTemperature(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(m, prefix) {
			return false
		}
	}
	return true
}

var _ llm.Summarizer = (*Client)(nil)

package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docforms-backend/internal/llm"
	"docforms-backend/internal/shared/telemetry"
)

// DefaultModel is used when LLM_MODEL is unset.
const DefaultModel = "gemini-2.0-flash"

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Summarizer on the Gemini API.
type Client struct {
	client *genai.Client
	model  generator
	name   string
}

// NewClient dials Gemini with an API key.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: client, model: client.GenerativeModel(model), name: model}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Summarize makes a single generation call; failures are not retried.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	prompt := llm.SummaryPrompt(content)
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out, err := responseText(resp)
	if err != nil {
		return "", err
	}

	telemetry.Info("llm.response", map[string]any{
		"provider":    "gemini",
		"model":       c.name,
		"prompt_hash": llm.PromptHash(prompt),
		"candidates":  len(resp.Candidates),
	})
	return out, nil
}

var errNoCandidates = errors.New("gemini response has no candidates")

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errNoCandidates
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", llm.ErrEmptyOutput
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", llm.ErrEmptyOutput
	}
	return out, nil
}

var _ llm.Summarizer = (*Client)(nil)

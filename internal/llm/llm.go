package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Summarizer abstracts the model providers behind the summarization feature.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

const summaryInstruction = "You are an expert summarizer.  Please provide a short summary of the following document content:\n\n"

// SummaryPrompt is the single prompt every provider sends for content.
func SummaryPrompt(content string) string {
	return summaryInstruction + content
}

// PromptHash identifies a prompt in logs without recording its content.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

var (
	// ErrNotConfigured is returned when no provider is wired.
	ErrNotConfigured = errors.New("llm provider not configured")

	// ErrEmptyOutput is returned when the model answered with no text.
	ErrEmptyOutput = errors.New("llm returned empty output")
)

// Disabled is the Summarizer used when LLM_PROVIDER=none or keys are missing.
type Disabled struct{}

// Summarize always returns ErrNotConfigured.
func (Disabled) Summarize(ctx context.Context, content string) (string, error) {
	_ = ctx
	_ = content
	return "", ErrNotConfigured
}

package summarize

import (
	"context"
	"errors"
	"strings"
	"time"

	"docforms-backend/internal/llm"
	"docforms-backend/internal/shared/metrics"
	"docforms-backend/internal/shared/telemetry"
)

// MinContentLength is the shortest trimmed input sent to a model.
const MinContentLength = 50

const (
	msgTooShort      = "Please provide at least 50 characters of content to summarize."
	progressSuccess  = "Generated a short summary of the document content."
	fallbackSummary  = "Could not generate a summary."
	progressFallback = "Failed to generate summary."
)

// ErrContentTooShort is returned before any model call when the input is too short.
var ErrContentTooShort = errors.New(msgTooShort)

// Result is the summarization outcome shown to the user.
type Result struct {
	Summary  string `json:"summary"`
	Progress string `json:"progress"`
}

// Service forwards document content to a Summarizer exactly once.
type Service struct {
	Model llm.Summarizer
}

func NewService(model llm.Summarizer) *Service {
	if model == nil {
		model = llm.Disabled{}
	}
	return &Service{Model: model}
}

// Summarize returns ErrContentTooShort for short input. Model failures are
// logged and mapped to the fallback result, never returned.
func (s *Service) Summarize(ctx context.Context, content string) (Result, error) {
	if len([]rune(strings.TrimSpace(content))) < MinContentLength {
		metrics.SummaryServed(metrics.SummaryRejected)
		return Result{}, ErrContentTooShort
	}

	start := time.Now()
	summary, err := s.Model.Summarize(ctx, content)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = llm.ErrEmptyOutput
	}
	if err != nil {
		metrics.SummaryServed(metrics.SummaryFallback)
		telemetry.Error("summarize.failed", map[string]any{
			"error":       err.Error(),
			"content_len": len(content),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return Result{Summary: fallbackSummary, Progress: progressFallback}, nil
	}

	metrics.SummaryServed(metrics.SummaryOK)
	telemetry.Info("summarize.complete", map[string]any{
		"content_len": len(content),
		"summary_len": len(summary),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return Result{Summary: strings.TrimSpace(summary), Progress: progressSuccess}, nil
}

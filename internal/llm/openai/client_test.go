package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docforms-backend/internal/llm"
)

func newTestClient(t *testing.T, model string, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient("test-key", model, WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, &calls
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ", "")
	assert.Error(t, err)
}

func TestSummarizeSendsSinglePrompt(t *testing.T) {
	var got completionRequest
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Brief.  "},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":3}}`))
	})

	out, err := c.Summarize(context.Background(), "body text")
	require.NoError(t, err)
	assert.Equal(t, "Brief.", out)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, llm.SummaryPrompt("body text"), got.Messages[0].Content)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.3, *got.Temperature)
}

func TestSummarizeErrorIsNotRetried(t *testing.T) {
	c, calls := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})

	_, err := c.Summarize(context.Background(), "body")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "slow down", apiErr.Message)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestSummarizeNonJSONFailure(t *testing.T) {
	c, _ := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := c.Summarize(context.Background(), "body")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestSummarizeEmptyOutput(t *testing.T) {
	for name, body := range map[string]string{
		"blank":      `{"choices":[{"message":{"content":"   "}}]}`,
		"no choices": `{"choices":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.Summarize(context.Background(), "body")
			assert.ErrorIs(t, err, llm.ErrEmptyOutput)
		})
	}
}

func TestAcceptsTemperature(t *testing.T) {
	cases := map[string]bool{
		"gpt-4o-mini": true,
		"gpt-5-mini":  false,
		"GPT-5":       false,
		"o3-mini":     false,
		"o1":          false,
	}
	for model, want := range cases {
		assert.Equal(t, want, acceptsTemperature(model), model)
	}
}

func TestReasoningModelOmitsTemperature(t *testing.T) {
	var raw map[string]any
	c, _ := newTestClient(t, "o3-mini", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})
	_, err := c.Summarize(context.Background(), "body")
	require.NoError(t, err)
	_, present := raw["temperature"]
	assert.False(t, present)
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func limitedRouter(limiter *RateLimiter, userID string, rules map[string]RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{Rules: rules, GroupFor: GroupForRoute, Limiter: limiter}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/v1/forms", ok)
	r.POST("/api/v1/summaries", ok)
	r.POST("/api/v1/exports/:type", ok)
	return r
}

func send(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
	return resp
}

func TestSummarizeLimitedIndependentlyOfDefault(t *testing.T) {
	clock := newClock()
	r := limitedRouter(NewRateLimiter(clock.now), "guest:g1", map[string]RateLimitRule{
		GroupDefault:   {Rate: 5, Burst: 10},
		GroupSummarize: {Rate: 1, Burst: 2},
	})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/v1/summaries").Code, "summary %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, send(r, http.MethodPost, "/api/v1/summaries").Code)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/v1/forms").Code, "default %d", i+1)
	}

	clock.advance(time.Second)
	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/v1/summaries").Code, "bucket refills")
}

func TestRateLimitResponse(t *testing.T) {
	clock := newClock()
	r := limitedRouter(NewRateLimiter(clock.now), "guest:g1", map[string]RateLimitRule{
		GroupExport: {Rate: 0.5, Burst: 1},
	})

	require.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/v1/exports/memorandum").Code)
	resp := send(r, http.MethodPost, "/api/v1/exports/memorandum")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "2", resp.Header().Get("Retry-After"))

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Error.Code)
	assert.Equal(t, GroupExport, body.Error.Details["group"])
	assert.EqualValues(t, 2000, body.Error.Details["retryAfterMs"])

	// Groups without a rule pass through.
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/v1/forms").Code)
}

func TestRateLimitSeparatesPrincipals(t *testing.T) {
	clock := newClock()
	limiter := NewRateLimiter(clock.now)
	rules := map[string]RateLimitRule{GroupDefault: {Rate: 1, Burst: 1}}

	a := limitedRouter(limiter, "guest:a", rules)
	b := limitedRouter(limiter, "guest:b", rules)
	require.Equal(t, http.StatusOK, send(a, http.MethodGet, "/api/v1/forms").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(a, http.MethodGet, "/api/v1/forms").Code)
	assert.Equal(t, http.StatusOK, send(b, http.MethodGet, "/api/v1/forms").Code)
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	clock := newClock()
	limiter := NewRateLimiter(clock.now)
	rule := RateLimitRule{Rate: 1, Burst: 1}

	limiter.Allow("guest:a|DEFAULT", rule)
	clock.advance(idleLimiterTTL + time.Second)
	limiter.Allow("guest:b|DEFAULT", rule)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "guest:b|DEFAULT")
}

func TestGroupForRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]string{
		"/api/v1/summaries":          GroupSummarize,
		"/api/v1/exports/memorandum": GroupExport,
		"/api/v1/forms":              GroupDefault,
	}
	for path, want := range cases {
		var got string
		r := gin.New()
		r.Use(func(c *gin.Context) {
			got = GroupForRoute(c)
			c.Status(http.StatusOK)
		})
		r.POST("/api/v1/summaries", func(*gin.Context) {})
		r.POST("/api/v1/exports/:type", func(*gin.Context) {})
		r.POST("/api/v1/forms", func(*gin.Context) {})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, want, got, path)
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"docforms-backend/internal/shared/server/respond"
)

// Rate limit groups. Each principal gets one bucket per group.
const (
	GroupDefault   = "DEFAULT"
	GroupSummarize = "SUMMARIZE"
	GroupExport    = "EXPORT"
)

// idleLimiterTTL is how long an unused bucket is kept before it is swept.
const idleLimiterTTL = 10 * time.Minute

// GroupForRoute puts summaries and exports in their own groups; everything
// else shares GroupDefault.
func GroupForRoute(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return GroupDefault
	}
	switch c.FullPath() {
	case "/api/v1/summaries":
		return GroupSummarize
	case "/api/v1/exports/:type":
		return GroupExport
	}
	return GroupDefault
}

// RateLimitRule is a sustained rate in requests per second plus a burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one token bucket per principal and group.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	lastGC  time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: map[string]*bucket{}, now: now}
}

// Allow takes one token for key. When the bucket is empty it reports how long
// until the next token is available.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastGC) < idleLimiterTTL {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > idleLimiterTTL {
			delete(l.buckets, k)
		}
	}
	l.lastGC = now
}

// RateLimit rejects requests over their group's rule with 429 and a
// Retry-After header. Groups without a rule are not limited.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = GroupDefault
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		principal := UserIDFromContext(c)
		if principal == "" {
			principal = "ip:" + c.ClientIP()
		}
		allowed, wait := cfg.Limiter.Allow(principal+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}

		waitMs := wait.Milliseconds()
		if waitMs <= 0 {
			waitMs = 1
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(float64(waitMs)/1000))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down", gin.H{
			"group":        group,
			"retryAfterMs": waitMs,
		})
	}
}

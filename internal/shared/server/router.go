package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "docforms-backend/internal/auth"
	"docforms-backend/internal/contact"
	"docforms-backend/internal/exports"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/sessions"
	"docforms-backend/internal/shared/auth"
	"docforms-backend/internal/shared/config"
	"docforms-backend/internal/shared/metrics"
	"docforms-backend/internal/shared/server/middleware"
	"docforms-backend/internal/shared/server/respond"
	"docforms-backend/internal/summarize"
	"docforms-backend/internal/users"
)

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	FormsHandler     *forms.Handler
	SessionsHandler  *sessions.Handler
	ExportsHandler   *exports.Handler
	SummariesHandler *summarize.Handler
	ContactHandler   *contact.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.Google
	Tokens           *auth.Tokens
	RateLimits       map[string]middleware.RateLimitRule
}

// DefaultRateLimits are requests per second and burst per principal.
var DefaultRateLimits = map[string]middleware.RateLimitRule{
	middleware.GroupDefault:   {Rate: 5, Burst: 20},
	middleware.GroupSummarize: {Rate: 0.2, Burst: 3},
	middleware.GroupExport:    {Rate: 1, Burst: 5},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	rules := deps.RateLimits
	if rules == nil {
		rules = DefaultRateLimits
	}

	var verifier middleware.TokenVerifier
	if deps.Tokens != nil {
		verifier = deps.Tokens
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rules,
			GroupFor: middleware.GroupForRoute,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.FormsHandler != nil {
		deps.FormsHandler.RegisterRoutes(api)
	}
	if deps.SessionsHandler != nil {
		deps.SessionsHandler.RegisterRoutes(api)
	}
	if deps.ExportsHandler != nil {
		deps.ExportsHandler.RegisterRoutes(api)
	}
	if deps.SummariesHandler != nil {
		deps.SummariesHandler.RegisterRoutes(api)
	}
	if deps.ContactHandler != nil {
		deps.ContactHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

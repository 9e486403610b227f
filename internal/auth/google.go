package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	sharedauth "docforms-backend/internal/shared/auth"
	"docforms-backend/internal/shared/server/respond"
	"docforms-backend/internal/shared/telemetry"
	"docforms-backend/internal/users"
)

const (
	loginTTL         = 5 * time.Minute
	maxPendingLogins = 10000
)

// SignInRecorder persists the identity so history and prefill follow the
// account across devices.
type SignInRecorder interface {
	RecordSignIn(ctx context.Context, id users.Identity) (users.User, error)
}

// TokenSigner issues the bearer token handed to the UI.
type TokenSigner interface {
	Sign(claims sharedauth.Claims) (string, error)
}

// GoogleConfig is the OAuth client registration plus where to send the
// browser afterwards.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UIRedirect   string
}

type googleProfile struct {
	Sub      string
	Email    string
	Name     string
	Picture  string
	Verified bool
}

// Google runs the authorization-code flow with PKCE and exchanges a Google
// identity for a docforms bearer token.
type Google struct {
	oauth      *oauth2.Config
	uiRedirect string
	pending    *loginStates
	tokens     TokenSigner
	recorder   SignInRecorder

	exchange func(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	profile  func(ctx context.Context, tok *oauth2.Token) (googleProfile, error)
	now      func() time.Time
}

// NewGoogle builds the handler. recorder may be nil.
func NewGoogle(cfg GoogleConfig, tokens TokenSigner, recorder SignInRecorder) *Google {
	g := &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
		uiRedirect: cfg.UIRedirect,
		pending:    newLoginStates(maxPendingLogins),
		tokens:     tokens,
		recorder:   recorder,
		now:        time.Now,
	}
	g.exchange = func(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
		return g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	}
	g.profile = g.userinfo
	return g
}

func (g *Google) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", g.start)
	rg.GET("/auth/google/callback", g.callback)
}

func (g *Google) ready(c *gin.Context) bool {
	if g.oauth.ClientID == "" || g.oauth.ClientSecret == "" || g.oauth.RedirectURL == "" || g.tokens == nil {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return false
	}
	return true
}

func (g *Google) start(c *gin.Context) {
	if !g.ready(c) {
		return
	}
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	if !g.pending.put(state, verifier, g.now().Add(loginTTL), g.now()) {
		respond.Error(c, http.StatusServiceUnavailable, "auth_busy", "too many pending sign-ins, try again shortly", nil)
		return
	}
	c.Redirect(http.StatusFound, g.oauth.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	))
}

func (g *Google) callback(c *gin.Context) {
	if !g.ready(c) {
		return
	}
	// A denied consent screen comes back with ?error= and no code.
	if reason := c.Query("error"); reason != "" {
		g.redirect(c, "error", reason)
		return
	}
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	verifier, ok := g.pending.take(state, g.now())
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	tok, err := g.exchange(ctx, code, verifier)
	if err != nil {
		telemetry.Warn("auth.exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	p, err := g.profile(ctx, tok)
	if err != nil || p.Sub == "" {
		telemetry.Warn("auth.profile_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}
	if !p.Verified {
		respond.Error(c, http.StatusForbidden, "auth_failed", "Google account email is not verified", nil)
		return
	}

	userID := "google:" + p.Sub
	if g.recorder != nil {
		if _, err := g.recorder.RecordSignIn(ctx, users.Identity{ID: userID, Email: p.Email, Name: p.Name, Picture: p.Picture}); err != nil {
			telemetry.Warn("auth.record_sign_in_failed", map[string]any{"user_id": userID, "error": err})
		}
	}

	token, err := g.tokens.Sign(sharedauth.Claims{Sub: userID, Email: p.Email, Name: p.Name, Picture: p.Picture})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	telemetry.Info("auth.signed_in", map[string]any{"user_id": userID})
	g.redirect(c, "token", token)
}

func (g *Google) redirect(c *gin.Context, key, value string) {
	target, err := withQuery(g.uiRedirect, key, value)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (g *Google) userinfo(ctx context.Context, tok *oauth2.Token) (googleProfile, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(g.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return googleProfile{}, err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return googleProfile{}, fmt.Errorf("userinfo: %w", err)
	}
	return googleProfile{
		Sub:      info.Id,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
		Verified: info.VerifiedEmail == nil || *info.VerifiedEmail,
	}, nil
}

type pendingLogin struct {
	verifier string
	expires  time.Time
}

// loginStates holds the PKCE verifier for each outstanding state parameter.
type loginStates struct {
	mu    sync.Mutex
	items map[string]pendingLogin
	max   int
}

func newLoginStates(limit int) *loginStates {
	return &loginStates{items: map[string]pendingLogin{}, max: limit}
}

func (s *loginStates) put(state, verifier string, expires, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= s.max {
		for k, p := range s.items {
			if now.After(p.expires) {
				delete(s.items, k)
			}
		}
		if len(s.items) >= s.max {
			return false
		}
	}
	s.items[state] = pendingLogin{verifier: verifier, expires: expires}
	return true
}

// take consumes a state; each state is good for one callback.
func (s *loginStates) take(state string, now time.Time) (string, bool) {
	s.mu.Lock()
	p, ok := s.items[state]
	delete(s.items, state)
	s.mu.Unlock()
	if !ok || now.After(p.expires) {
		return "", false
	}
	return p.verifier, true
}

func withQuery(rawURL, key, value string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

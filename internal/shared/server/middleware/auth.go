package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/auth"
	"docforms-backend/internal/shared/server/respond"
)

// Context keys written by Auth. Handlers and tests read them through the
// helpers below.
const (
	userIDKey      = "userId"
	isGuestKey     = "isGuest"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
)

const (
	guestHeader     = "X-Guest-Id"
	guestPrefix     = "guest:"
	maxGuestIDBytes = 128
)

// publicPrefixes are served without an identity.
var publicPrefixes = []string{
	"/api/v1/auth/google/",
	"/api/v1/health",
	"/api/v1/contact",
	"/metrics",
}

// TokenVerifier checks bearer tokens issued at sign-in.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Identity is who a request acts for.
type Identity struct {
	UserID  string
	Guest   bool
	Email   string
	Name    string
	Picture string
}

// Auth resolves the caller from a bearer token or, failing that, the
// X-Guest-Id header. A present but bad token is never downgraded to guest.
// With a nil verifier every bearer token is rejected.
func Auth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		id, code, msg := identify(c, tokens)
		if code != "" {
			respond.Error(c, http.StatusUnauthorized, code, msg, nil)
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

func identify(c *gin.Context, tokens TokenVerifier) (Identity, string, string) {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		scheme, token, _ := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !strings.EqualFold(scheme, "Bearer") || token == "" || tokens == nil {
			return Identity{}, "unauthorized", "missing or invalid token"
		}
		claims, err := tokens.Verify(token)
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return Identity{}, "token_expired", "session expired, please sign in again"
		case err != nil:
			return Identity{}, "unauthorized", "missing or invalid token"
		}
		return Identity{UserID: claims.Sub, Email: claims.Email, Name: claims.Name, Picture: claims.Picture}, "", ""
	}

	guestID := strings.TrimSpace(c.GetHeader(guestHeader))
	switch {
	case guestID == "":
		return Identity{}, "unauthorized", "Missing identity"
	case len(guestID) > maxGuestIDBytes || strings.ContainsAny(guestID, " \t\r\n"):
		return Identity{}, "unauthorized", "invalid guest id"
	}
	return Identity{UserID: guestPrefix + guestID, Guest: true}, "", ""
}

func isPublic(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func setIdentity(c *gin.Context, id Identity) {
	c.Set(userIDKey, id.UserID)
	c.Set(isGuestKey, id.Guest)
	for key, v := range map[string]string{userEmailKey: id.Email, userNameKey: id.Name, userPictureKey: id.Picture} {
		if v != "" {
			c.Set(key, v)
		}
	}
}

// IdentityFromContext returns the identity Auth stored, or the zero value.
func IdentityFromContext(c *gin.Context) Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{
		UserID:  c.GetString(userIDKey),
		Guest:   c.GetBool(isGuestKey),
		Email:   c.GetString(userEmailKey),
		Name:    c.GetString(userNameKey),
		Picture: c.GetString(userPictureKey),
	}
}

func UserIDFromContext(c *gin.Context) string      { return IdentityFromContext(c).UserID }
func UserEmailFromContext(c *gin.Context) string   { return IdentityFromContext(c).Email }
func UserNameFromContext(c *gin.Context) string    { return IdentityFromContext(c).Name }
func UserPictureFromContext(c *gin.Context) string { return IdentityFromContext(c).Picture }

// IsGuest reports whether the request was identified by X-Guest-Id.
func IsGuest(c *gin.Context) bool { return IdentityFromContext(c).Guest }

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/auth"
)

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.OPTIONS("/api/v1/exports/memorandum", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/exports/memorandum", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.GET("/api/v1/exports", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthContactIsPublic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.POST("/api/v1/contact", func(c *gin.Context) {
		if UserIDFromContext(c) != "" {
			t.Errorf("expected no identity on public route")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthGuestHeaderSetsPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.GET("/api/v1/exports", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "guest": IsGuest(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"guest":true,"userId":"guest:abc"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestAuthBearerToken(t *testing.T) {
	tokens, err := auth.NewTokens("test-secret", "dev")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	token, err := tokens.Sign(auth.Claims{Sub: "google:7", Email: "t@foci.group"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(tokens))
	router.GET("/api/v1/exports", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "email": UserEmailFromContext(c), "guest": IsGuest(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body := resp.Body.String(); resp.Code != http.StatusOK || body != `{"email":"t@foci.group","guest":false,"userId":"google:7"}` {
		t.Fatalf("unexpected response %d %s", resp.Code, body)
	}

	tokens.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.Code)
	}
}

func TestAuthWithoutVerifierRejectsBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.GET("/api/v1/exports", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRejectsMalformedGuestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.GET("/api/v1/exports", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"has space", strings.Repeat("g", 129)} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
		req.Header.Set("X-Guest-Id", id)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("guest id %q: expected 401, got %d", id, resp.Code)
		}
	}
}

func TestAuthBadTokenIsNotDowngradedToGuest(t *testing.T) {
	tokens, err := auth.NewTokens("test-secret", "dev")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(tokens))
	router.GET("/api/v1/exports", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"Bearer forged.token.value", "Basic dXNlcjpwYXNz", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
		req.Header.Set("Authorization", header)
		req.Header.Set("X-Guest-Id", "g1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, resp.Code)
		}
	}
}

func TestIdentityFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := IdentityFromContext(c); got != (Identity{}) {
		t.Fatalf("expected zero identity, got %+v", got)
	}
	setIdentity(c, Identity{UserID: "google:1", Name: "Lerato"})
	if got := IdentityFromContext(c); got.UserID != "google:1" || got.Name != "Lerato" || got.Guest {
		t.Fatalf("unexpected identity %+v", got)
	}
}

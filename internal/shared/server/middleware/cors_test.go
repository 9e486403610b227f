package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRequest(allowed []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(allowed))
	router.POST("/api/v1/exports/:type", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(method, "/api/v1/exports/tax-invoice", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCORSPreflight(t *testing.T) {
	resp := corsRequest([]string{"http://localhost:5173/"}, http.MethodOptions, "http://localhost:5173")

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	h := resp.Header()
	if got := h.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected Allow-Origin %q", got)
	}
	if h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials for a listed origin")
	}
	if !strings.Contains(h.Get("Access-Control-Allow-Headers"), "X-Guest-Id") {
		t.Fatalf("expected X-Guest-Id to be allowed, got %q", h.Get("Access-Control-Allow-Headers"))
	}
	if h.Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("expected Max-Age 600")
	}
}

func TestCORSExposesExportHeaders(t *testing.T) {
	resp := corsRequest([]string{"http://localhost:5173"}, http.MethodPost, "http://localhost:5173")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	exposed := resp.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"X-Export-Id", "X-Reference-No", "Content-Disposition"} {
		if !strings.Contains(exposed, h) {
			t.Fatalf("expected %s in Expose-Headers, got %q", h, exposed)
		}
	}
	if resp.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Fatalf("Allow-Methods belongs on preflights only")
	}
}

func TestCORSWildcard(t *testing.T) {
	resp := corsRequest([]string{"*"}, http.MethodPost, "https://forms.example")

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected *, got %q", got)
	}
	if resp.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("wildcard must not allow credentials")
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	resp := corsRequest([]string{"http://localhost:5173"}, http.MethodPost, "https://evil.example")

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no Allow-Origin, got %q", got)
	}
	if resp.Header().Get("Vary") != "Origin" {
		t.Fatalf("expected Vary: Origin")
	}
}

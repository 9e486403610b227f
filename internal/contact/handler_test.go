package contact

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func postContact(t *testing.T, body string) (int, Reply) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(&recordingNotifier{})).RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(resp, req)

	var reply Reply
	if err := json.Unmarshal(resp.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode: %v (%s)", err, resp.Body.String())
	}
	return resp.Code, reply
}

func TestContactHandlerAccepts(t *testing.T) {
	code, reply := postContact(t, `{"name":"Ana","email":"ana@example.com","message":"I would like a quote."}`)
	if code != http.StatusOK || !reply.Success {
		t.Fatalf("expected success, got %d %+v", code, reply)
	}
}

func TestContactHandlerRejects(t *testing.T) {
	for _, body := range []string{
		`{"name":"A","email":"ana@example.com","message":"I would like a quote."}`,
		`{"name":`,
	} {
		code, reply := postContact(t, body)
		if code != http.StatusBadRequest || reply.Success {
			t.Fatalf("expected rejection for %s, got %d %+v", body, code, reply)
		}
		if reply.Message != "Invalid form data. Please check your entries." {
			t.Fatalf("unexpected message %q", reply.Message)
		}
	}
}

package summarize

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newSummarizeRouter(model *stubModel) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(model)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postSummary(r *gin.Engine, body string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/summaries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(resp, req)
	return resp
}

func TestHandlerReturnsSummary(t *testing.T) {
	r := newSummarizeRouter(&stubModel{summary: "Short."})
	payload, _ := json.Marshal(map[string]string{"documentContent": longContent})

	resp := postSummary(r, string(payload))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got Result
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Summary != "Short." || got.Progress != progressSuccess {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestHandlerShortContent(t *testing.T) {
	model := &stubModel{summary: "unused"}
	r := newSummarizeRouter(model)

	resp := postSummary(r, `{"documentContent":"too short"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "Please provide at least 50 characters of content to summarize." {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if model.Calls() != 0 {
		t.Fatalf("model should not be called")
	}
}

func TestHandlerInvalidJSON(t *testing.T) {
	r := newSummarizeRouter(&stubModel{})
	resp := postSummary(r, `{`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

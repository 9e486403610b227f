package respond

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/exports/:type", func(c *gin.Context) {
		c.Set("requestId", "req-9")
		c.Set("userId", "guest:a")
		c.Set("isGuest", true)
		Error(c, http.StatusUnprocessableEntity, "validation_error", "Missing required fields", map[string]any{"fields": []string{"vendorName"}})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/exports/purchase-order", nil))

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "Missing required fields", body.Error.Message)
	assert.Equal(t, "req-9", body.Error.RequestID)
	assert.Equal(t, map[string]any{"fields": []any{"vendorName"}}, body.Error.Details)
}

func TestAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/file", func(c *gin.Context) {
		Attachment(c, "Tax-Invoice-INV-FOC-2025-0001.pdf", "application/pdf", []byte("%PDF-1.4"))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/file", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Tax-Invoice-INV-FOC-2025-0001.pdf", resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "private, no-store", resp.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.4", resp.Body.String())
}

func TestAttachmentEncodesUnicodeName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/file", func(c *gin.Context) {
		Attachment(c, "Memo Déjà.pdf", "application/pdf", []byte("x"))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/file", nil))

	_, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "Memo Déjà.pdf", params["filename"])
}

func TestAttachmentReaderMatchesAttachmentHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/file", func(c *gin.Context) {
		AttachmentReader(c, "Memo Déjà.pdf", "application/pdf", 8, strings.NewReader("%PDF-1.4"))
	})
	router.GET("/bytes", func(c *gin.Context) {
		Attachment(c, "Memo Déjà.pdf", "application/pdf", []byte("%PDF-1.4"))
	})

	streamed := httptest.NewRecorder()
	router.ServeHTTP(streamed, httptest.NewRequest(http.MethodGet, "/file", nil))
	buffered := httptest.NewRecorder()
	router.ServeHTTP(buffered, httptest.NewRequest(http.MethodGet, "/bytes", nil))

	require.Equal(t, http.StatusOK, streamed.Code)
	for _, h := range []string{"Content-Disposition", "Content-Type", "Content-Length", "Cache-Control"} {
		assert.Equal(t, buffered.Header().Get(h), streamed.Header().Get(h), h)
	}
	assert.Equal(t, "%PDF-1.4", streamed.Body.String())
}

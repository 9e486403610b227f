package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can attribute an export.
const (
	DocTypeKey     = "docType"
	ExportIDKey    = "exportId"
	ReferenceNoKey = "referenceNo"
)

var attributionFields = map[string]string{
	DocTypeKey:     "doc_type",
	ExportIDKey:    "export_id",
	ReferenceNoKey: "reference_no",
}

// Logging writes one "request.complete" line per request. Preflights are
// skipped; 5xx responses log at error level.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		id := IdentityFromContext(c)
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
			"user_id":     id.UserID,
			"is_guest":    id.Guest,
			"client_ip":   c.ClientIP(),
		}
		for key, field := range attributionFields {
			if v := c.GetString(key); v != "" {
				fields[field] = v
			}
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			telemetry.Error("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}

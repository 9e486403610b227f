package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/server/respond"
	"docforms-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error envelope. The stack is
// logged with the route and document type so a failing layout can be traced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"panic":      rec,
				"stack":      string(debug.Stack()),
				"method":     c.Request.Method,
				"route":      c.FullPath(),
			}
			if docType := c.Param("type"); docType != "" {
				fields["doc_type"] = docType
			}
			if id := c.Param("id"); id != "" {
				fields["resource_id"] = id
			}
			telemetry.Error("http.panic", fields)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		}()
		c.Next()
	}
}

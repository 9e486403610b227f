package respond

import (
	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/telemetry"
)

// ErrorBody is the error object every failing endpoint returns.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse is {"error": ErrorBody}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs and aborts with the error envelope. Client errors log at warn,
// server errors at error.
func Error(c *gin.Context, status int, code, message string, details any) {
	reqID := c.GetString("requestId")
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"route":      c.FullPath(),
		"method":     c.Request.Method,
		"request_id": reqID,
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
		fields["is_guest"] = c.GetBool("isGuest")
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: reqID,
	}})
}

package summarize

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/server/respond"
)

const maxSummarizeBody = 1 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/summaries", h.create)
}

type summarizeRequest struct {
	DocumentContent string `json:"documentContent"`
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSummarizeBody)
	var body summarizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}

	res, err := h.Svc.Summarize(c.Request.Context(), body.DocumentContent)
	if err != nil {
		if errors.Is(err, ErrContentTooShort) {
			respond.Error(c, http.StatusBadRequest, "validation_error", msgTooShort, map[string]any{
				"field":     "documentContent",
				"minLength": MinContentLength,
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", progressFallback, nil)
		return
	}
	respond.OK(c, res)
}

package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/server/respond"
)

const maxContactBody = 64 << 10

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contact", h.submit)
}

func (h *Handler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxContactBody)
	var body Inquiry
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.JSON(c, http.StatusBadRequest, Reply{Success: false, Message: msgInvalid})
		return
	}

	reply, err := h.Svc.Submit(c.Request.Context(), body)
	switch {
	case errors.Is(err, ErrInvalidForm):
		respond.JSON(c, http.StatusBadRequest, reply)
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit inquiry", nil)
	default:
		respond.OK(c, reply)
	}
}

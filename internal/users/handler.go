package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/shared/server/middleware"
	"docforms-backend/internal/shared/server/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	me := rg.Group("/me", requireAccount)
	me.GET("", h.me)
	me.PUT("/profile", h.setProfile)
}

func requireAccount(c *gin.Context) {
	if middleware.IsGuest(c) || middleware.UserIDFromContext(c) == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	c.Next()
}

// me falls back to the token claims until the first sign-in is recorded.
func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	user, err := h.svc.Get(c.Request.Context(), userID)
	switch {
	case errors.Is(err, ErrNotFound):
		user = User{
			ID:      userID,
			Email:   middleware.UserEmailFromContext(c),
			Name:    middleware.UserNameFromContext(c),
			Picture: middleware.UserPictureFromContext(c),
		}
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) setProfile(c *gin.Context) {
	var body Profile
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	user, err := h.svc.SetProfile(c.Request.Context(), middleware.UserIDFromContext(c), body)
	switch {
	case errors.Is(err, ErrInvalidProfile):
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobTitle and department must be at most 120 characters", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update profile", nil)
	default:
		respond.OK(c, user)
	}
}

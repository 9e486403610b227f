package sessions

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/forms"
	"docforms-backend/internal/shared/server/middleware"
	"docforms-backend/internal/shared/server/respond"
	"docforms-backend/internal/shared/telemetry"
	"docforms-backend/internal/users"
)

// ProfileLookup finds the signed-in user's profile for field prefill.
type ProfileLookup interface {
	Get(ctx context.Context, userID string) (users.User, error)
}

type Handler struct {
	Store    *Store
	Profiles ProfileLookup
}

func NewHandler(store *Store, profiles ProfileLookup) *Handler {
	return &Handler{Store: store, Profiles: profiles}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/form-sessions", h.create)
	rg.GET("/form-sessions/:id", h.get)
	rg.POST("/form-sessions/:id/reset", h.reset)
}

type createRequest struct {
	Type string `json:"type" binding:"required"`
}

type sessionResponse struct {
	Session
	Prefill map[string]string `json:"prefill,omitempty"`
}

func (h *Handler) create(c *gin.Context) {
	var body createRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "type is required", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	session, err := h.Store.Create(c.Request.Context(), userID, body.Type)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.DocTypeKey, session.Type)
	c.Set(middleware.ReferenceNoKey, session.ReferenceNo)
	telemetry.Info("session.created", map[string]any{
		"session_id":   session.ID,
		"doc_type":     session.Type,
		"reference_no": session.ReferenceNo,
		"user_id":      userID,
	})
	respond.JSON(c, http.StatusCreated, sessionResponse{Session: session, Prefill: h.prefill(c, session.Type)})
}

func (h *Handler) get(c *gin.Context) {
	session, err := h.Store.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, sessionResponse{Session: session})
}

func (h *Handler) reset(c *gin.Context) {
	session, err := h.Store.Reset(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.ReferenceNoKey, session.ReferenceNo)
	respond.OK(c, sessionResponse{Session: session})
}

// prefill returns the user's profile values for fields the form declares.
func (h *Handler) prefill(c *gin.Context, docType string) map[string]string {
	if h.Profiles == nil || middleware.IsGuest(c) {
		return nil
	}
	user, err := h.Profiles.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		return nil
	}
	def, err := h.Store.Registry.Get(docType)
	if err != nil {
		return nil
	}
	out := map[string]string{}
	for key, value := range user.Prefill() {
		if _, ok := def.Field(key); ok {
			out[key] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, forms.ErrUnknownType):
		respond.Error(c, http.StatusNotFound, "unknown_type", "unknown document type", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "form session not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "forbidden", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "form session failed", nil)
	}
}

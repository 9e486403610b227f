package forms

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/document"
	"docforms-backend/internal/shared/server/respond"
)

// Handler serves form definitions to the generic form renderer.
type Handler struct {
	Registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{Registry: registry}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/forms", h.list)
	rg.GET("/forms/:type", h.get)
}

// Summary is the list view of a definition.
type Summary struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Format      document.Format `json:"format"`
	Reference   bool            `json:"reference"`
}

type definitionResponse struct {
	*Definition
	TaxRate *float64 `json:"taxRate,omitempty"`
}

func (h *Handler) list(c *gin.Context) {
	defs := h.Registry.List()
	out := make([]Summary, 0, len(defs))
	for _, def := range defs {
		out = append(out, Summary{
			Type:        def.Type,
			Title:       def.Title,
			Description: def.Description,
			Format:      def.Format,
			Reference:   def.RequiresReference(),
		})
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	def, err := h.Registry.Get(c.Param("type"))
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			respond.Error(c, http.StatusNotFound, "unknown_type", "unknown document type", map[string]any{"type": c.Param("type")})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load form", nil)
		return
	}
	resp := definitionResponse{Definition: def}
	if def.LineItems {
		rate := h.Registry.Options().Rate()
		resp.TaxRate = &rate
	}
	respond.OK(c, resp)
}

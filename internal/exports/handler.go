package exports

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docforms-backend/internal/document"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/sessions"
	"docforms-backend/internal/shared/server/middleware"
	"docforms-backend/internal/shared/server/respond"
)

// maxExportBody caps a submission; signature data URLs dominate its size.
const maxExportBody = 8 << 20

// Handler wires HTTP handlers to the export service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/exports/:type", h.create)
	rg.GET("/exports", h.list)
	rg.GET("/exports/:id", h.get)
	rg.GET("/exports/:id/download", h.download)
	rg.GET("/exports/:id/text", h.text)
}

// ExportResponse is the JSON shape of an export record.
type ExportResponse struct {
	ID          string    `json:"id"`
	DocType     string    `json:"docType"`
	Format      string    `json:"format"`
	FileName    string    `json:"fileName"`
	ReferenceNo string    `json:"referenceNo,omitempty"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toExportResponse(e Export) ExportResponse {
	return ExportResponse{
		ID:          e.ID,
		DocType:     e.DocType,
		Format:      e.Format,
		FileName:    e.FileName,
		ReferenceNo: e.ReferenceNo,
		MimeType:    e.MimeType,
		SizeBytes:   e.SizeBytes,
		CreatedAt:   e.CreatedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docType := c.Param("type")
	c.Set(middleware.DocTypeKey, docType)

	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxExportBody))
	if err := dec.Decode(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid export request", nil)
		return
	}

	res, err := h.Svc.Export(c.Request.Context(), userID, docType, req)
	if err != nil {
		writeExportError(c, err)
		return
	}

	if res.Export.ID != "" {
		c.Set(middleware.ExportIDKey, res.Export.ID)
		c.Header("X-Export-Id", res.Export.ID)
	}
	if res.Export.ReferenceNo != "" {
		c.Set(middleware.ReferenceNoKey, res.Export.ReferenceNo)
		c.Header("X-Reference-No", res.Export.ReferenceNo)
	}
	respond.Attachment(c, res.Artifact.FileName, res.Artifact.ContentType, res.Artifact.Bytes)
}

func writeExportError(c *gin.Context, err error) {
	var validation *forms.ValidationError
	var missing *document.MissingSignatureError
	switch {
	case errors.As(err, &validation):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Please correct the highlighted fields.", validation.Issues)
	case errors.As(err, &missing):
		respond.Error(c, http.StatusUnprocessableEntity, "missing_signature", missing.Error(), gin.H{"slot": missing.Key})
	case errors.Is(err, document.ErrMalformedImageData):
		respond.Error(c, http.StatusUnprocessableEntity, "export_failed", "Failed to generate the document. Please try again.", nil)
	case errors.Is(err, forms.ErrUnknownType):
		respond.Error(c, http.StatusNotFound, "unknown_type", "unknown document type", nil)
	case errors.Is(err, sessions.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "form session not found", nil)
	case errors.Is(err, sessions.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	case errors.Is(err, sessions.ErrTypeMismatch), errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid export request", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "export_failed", "Failed to generate the document. Please try again.", nil)
	}
}

func (h *Handler) list(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}

	page := PageFromQuery(c.Query("limit"), c.Query("offset"))
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), page)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exports", nil)
		return
	}
	resp := make([]ExportResponse, 0, len(items))
	for _, e := range items {
		resp = append(resp, toExportResponse(e))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}
	export, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	respond.OK(c, toExportResponse(export))
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	export, reader, err := h.Svc.Open(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	defer reader.Close()

	c.Set(middleware.ExportIDKey, export.ID)
	size := export.SizeBytes
	if size <= 0 {
		size = -1
	}
	respond.AttachmentReader(c, export.FileName, export.MimeType, size, reader)
}

func (h *Handler) text(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}
	export, text, err := h.Svc.Text(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	c.Set(middleware.ExportIDKey, export.ID)
	respond.OK(c, gin.H{"id": export.ID, "fileName": export.FileName, "text": text})
}

func writeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotArchived):
		respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "export id is required", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load export", nil)
	}
}

package respond

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Attachment sends data as a download named fileName. Non-ASCII names are
// encoded with the RFC 2231 filename* form.
func Attachment(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", disposition(fileName))
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, contentType, data)
}

// AttachmentReader streams size bytes from r as a download named fileName.
// A negative size omits Content-Length.
func AttachmentReader(c *gin.Context, fileName, contentType string, size int64, r io.Reader) {
	c.DataFromReader(http.StatusOK, size, contentType, r, map[string]string{
		"Content-Disposition": disposition(fileName),
		"Cache-Control":       "private, no-store",
	})
}

func disposition(fileName string) string {
	if d := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); d != "" {
		return d
	}
	return "attachment"
}

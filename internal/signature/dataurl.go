package signature

import (
	"encoding/base64"
	"errors"
	"strings"

	"docforms-backend/internal/document"
)

// ErrInvalidDataURL indicates the payload is not a base64 image data URL.
var ErrInvalidDataURL = errors.New("invalid signature data url")

// ErrTooManyPoints indicates a stroke signature exceeds MaxPoints.
var ErrTooManyPoints = errors.New("too many signature points")

// DecodeDataURL converts a browser canvas export ("data:image/png;base64,...")
// into a SignatureImage. An empty string yields the empty image. The raster
// bytes are not decoded here; malformed images surface when a serializer embeds them.
func DecodeDataURL(raw string) (document.SignatureImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return document.SignatureImage{}, nil
	}
	header, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return document.SignatureImage{}, ErrInvalidDataURL
	}
	header = strings.ToLower(header)
	if !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return document.SignatureImage{}, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return document.SignatureImage{}, ErrInvalidDataURL
	}
	return document.SignatureImage{PNG: data}, nil
}

// EncodeDataURL is the inverse of DecodeDataURL for PNG images.
func EncodeDataURL(img document.SignatureImage) string {
	if img.IsEmpty() {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)
}

package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration for uploaded signatures
	_ "image/png"
)

// Format selects the serializer for a document type.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Spec is the format-neutral description of one document, built fresh per export.
type Spec struct {
	Type       string
	Title      string
	Format     Format
	FileName   string
	Reference  string
	Blocks     []Block
	Signatures []SignatureSlot
}

// SignatureSlot declares a named place for a signature image.
type SignatureSlot struct {
	Key      string
	Name     string
	Required bool
	Width    float64
	Height   float64
}

// Slot returns the declared slot for key.
func (s Spec) Slot(key string) (SignatureSlot, bool) {
	for _, slot := range s.Signatures {
		if slot.Key == key {
			return slot, true
		}
	}
	return SignatureSlot{}, false
}

// SignatureImage is a lossless raster of a signature, or empty.
type SignatureImage struct {
	PNG []byte
}

// IsEmpty reports whether no signature was captured.
func (s SignatureImage) IsEmpty() bool {
	return len(s.PNG) == 0
}

// Clone returns a copy that shares no memory with s.
func (s SignatureImage) Clone() SignatureImage {
	if s.IsEmpty() {
		return SignatureImage{}
	}
	return SignatureImage{PNG: bytes.Clone(s.PNG)}
}

// Decode parses the raster bytes.
func (s SignatureImage) Decode() (image.Image, error) {
	if s.IsEmpty() {
		return nil, fmt.Errorf("empty image")
	}
	img, _, err := image.Decode(bytes.NewReader(s.PNG))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

// ExportArtifact is a finished document ready to be delivered.
type ExportArtifact struct {
	FileName    string
	ContentType string
	Bytes       []byte
}

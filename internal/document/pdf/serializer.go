package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"docforms-backend/internal/document"
)

// ContentType is the MIME type of generated files.
const ContentType = "application/pdf"

const (
	fontRegular = "regular"
	fontBold    = "bold"
	fontItalic  = "italic"
)

// Serializer lays out document specs on A4 pages with explicit positioning.
type Serializer struct {
	Author string
	now    func() time.Time
}

// New returns a PDF serializer.
func New(author string) *Serializer {
	return &Serializer{Author: author, now: time.Now}
}

func (s *Serializer) Format() document.Format { return document.FormatPDF }

func (s *Serializer) ContentType() string { return ContentType }

// Serialize renders spec into a fresh gopdf document. Each call owns its own
// gopdf instance, so concurrent exports never share layout state.
func (s *Serializer) Serialize(spec document.Spec, images map[string]document.SignatureImage) ([]byte, error) {
	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: *gopdf.PageSizeA4})

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	doc.SetInfo(gopdf.PdfInfo{
		Title:        spec.Title,
		Author:       s.Author,
		Creator:      s.Author,
		CreationDate: now(),
	})

	for family, data := range map[string][]byte{
		fontRegular: goregular.TTF,
		fontBold:    gobold.TTF,
		fontItalic:  goitalic.TTF,
	} {
		if err := doc.AddTTFFontData(family, data); err != nil {
			return nil, fmt.Errorf("load font %s: %w", family, err)
		}
	}

	l := newLayout(doc, images)
	if err := l.run(spec.Blocks); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var _ document.Serializer = (*Serializer)(nil)

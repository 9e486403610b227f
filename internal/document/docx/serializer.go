package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/png"
	"time"

	"docforms-backend/internal/document"
)

// ContentType is the MIME type of generated files.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Serializer renders document specs as WordprocessingML packages.
type Serializer struct {
	// Creator is written to the package core properties.
	Creator string
	now     func() time.Time
}

// New returns a DOCX serializer.
func New(creator string) *Serializer {
	return &Serializer{Creator: creator, now: time.Now}
}

func (s *Serializer) Format() document.Format { return document.FormatDOCX }

func (s *Serializer) ContentType() string { return ContentType }

// Serialize builds the package in memory. Every referenced signature is decoded and
// re-encoded as PNG so a corrupt upload fails here rather than inside Word.
func (s *Serializer) Serialize(spec document.Spec, images map[string]document.SignatureImage) ([]byte, error) {
	media, err := prepareMedia(spec, images)
	if err != nil {
		return nil, err
	}

	body := newBodyWriter(media)
	body.writeBlocks(spec.Blocks, false)
	documentXML := body.document()

	if err := checkMarkup(documentXML); err != nil {
		return nil, err
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	parts := []zipPart{
		{name: "[Content_Types].xml", content: contentTypesXML()},
		{name: "_rels/.rels", content: rootRelsXML},
		{name: "docProps/core.xml", content: corePropsXML(spec.Title, s.Creator, now().UTC())},
		{name: "word/document.xml", content: documentXML},
		{name: "word/styles.xml", content: stylesXML},
		{name: "word/_rels/document.xml.rels", content: documentRelsXML(media)},
	}
	for _, m := range media.ordered {
		parts = append(parts, zipPart{name: "word/" + m.target, content: string(m.data)})
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, p := range parts {
		if err := writeZipEntry(zw, p.name, []byte(p.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

type zipPart struct {
	name    string
	content string
}

func writeZipEntry(zw *zip.Writer, name string, content []byte) error {
	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	header.Modified = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

type mediaItem struct {
	slot   string
	relID  string
	target string
	data   []byte
	docPr  int
}

type mediaSet struct {
	bySlot  map[string]*mediaItem
	ordered []*mediaItem
}

func prepareMedia(spec document.Spec, images map[string]document.SignatureImage) (*mediaSet, error) {
	set := &mediaSet{bySlot: make(map[string]*mediaItem)}
	var visit func(blocks []document.Block) error
	visit = func(blocks []document.Block) error {
		for _, b := range blocks {
			switch v := b.(type) {
			case document.Image:
				if _, seen := set.bySlot[v.Slot]; seen {
					continue
				}
				img, ok := images[v.Slot]
				if !ok || img.IsEmpty() {
					continue
				}
				decoded, err := img.Decode()
				if err != nil {
					return &document.MalformedImageError{Slot: v.Slot, Err: err}
				}
				var buf bytes.Buffer
				if err := png.Encode(&buf, decoded); err != nil {
					return &document.MalformedImageError{Slot: v.Slot, Err: err}
				}
				n := len(set.ordered) + 1
				item := &mediaItem{
					slot:   v.Slot,
					relID:  fmt.Sprintf("rIdImg%d", n),
					target: fmt.Sprintf("media/image%d.png", n),
					data:   buf.Bytes(),
					docPr:  n,
				}
				set.bySlot[v.Slot] = item
				set.ordered = append(set.ordered, item)
			case document.Table:
				for _, row := range v.Rows {
					for _, cell := range row {
						if err := visit(cell.Blocks); err != nil {
							return err
						}
					}
				}
			}
		}
		return nil
	}
	if err := visit(spec.Blocks); err != nil {
		return nil, err
	}
	return set, nil
}

var _ document.Serializer = (*Serializer)(nil)

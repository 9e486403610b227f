// Package extract turns generated PDF and DOCX documents back into plain text
// for previews and summaries.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"

	"docforms-backend/internal/shared/storage/object"
)

// Kind is a document format extract understands.
type Kind string

const (
	KindUnknown Kind = ""
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const docxBody = "word/document.xml"

// ErrUnsupported is returned for payloads that are neither PDF nor DOCX.
var ErrUnsupported = errors.New("unsupported document")

// FromStore reads an archived document and returns its text.
func FromStore(ctx context.Context, store object.Store, key, mimeType, fileName string) (string, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return FromBytes(ctx, data, mimeType, fileName)
}

// FromBytes extracts text from an in-memory document.
func FromBytes(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch kind := Detect(data, mimeType, fileName); kind {
	case KindPDF:
		return pdfText(data)
	case KindDOCX:
		return docxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, describe(mimeType, fileName))
	}
}

// Detect trusts an explicit PDF or DOCX mime type, then the leading bytes.
// A zip only counts as DOCX when it carries a Word body part.
func Detect(data []byte, mimeType, fileName string) Kind {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])) {
	case mimePDF:
		return KindPDF
	case mimeDOCX:
		return KindDOCX
	}
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return KindPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		if hasDocxBody(data) {
			return KindDOCX
		}
		return KindUnknown
	}
	if strings.EqualFold(path.Ext(fileName), ".pdf") && len(data) > 0 {
		return KindPDF
	}
	return KindUnknown
}

func describe(mimeType, fileName string) string {
	if m := strings.TrimSpace(mimeType); m != "" {
		return m
	}
	if ext := path.Ext(fileName); ext != "" {
		return ext
	}
	return "unknown"
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func hasDocxBody(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == docxBody {
			return true
		}
	}
	return false
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordprocessingText(rc)
	}
	return "", fmt.Errorf("%w: missing %s", ErrUnsupported, docxBody)
}

// wordprocessingText keeps paragraph breaks, turns tabs and table cells into
// tab characters and drops everything else.
func wordprocessingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var out strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBody, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			case "tc":
				out.WriteByte('\t')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return tidy(out.String()), nil
}

// tidy trims trailing tabs and spaces per line and collapses blank-line runs.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

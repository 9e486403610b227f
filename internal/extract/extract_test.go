package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"docforms-backend/internal/document"
	"docforms-backend/internal/document/docx"
	"docforms-backend/internal/document/pdf"
	"docforms-backend/internal/shared/storage/object"
	"docforms-backend/internal/shared/storage/object/local"
)

func sampleSpec(format document.Format) document.Spec {
	return document.Spec{
		Type:     "memorandum",
		Title:    "Memorandum",
		Format:   format,
		FileName: "Memorandum." + string(format),
		Blocks: []document.Block{
			document.Heading{Text: "Memorandum", Level: 1},
			document.Labeled("Subject: ", "Office relocation"),
			document.Text("The office moves on Monday."),
		},
	}
}

func zipWith(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytesGeneratedDocx(t *testing.T) {
	data, err := docx.New("test").Serialize(sampleSpec(document.FormatDOCX), nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	text, err := FromBytes(context.Background(), data, "application/zip", "Memorandum.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Office relocation") || !strings.Contains(text, "The office moves on Monday.") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestFromBytesSniffsPDF(t *testing.T) {
	data, err := pdf.New("test").Serialize(sampleSpec(document.FormatPDF), nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	text, err := FromBytes(context.Background(), data, "", "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Memorandum") {
		t.Fatalf("expected title in text, got %q", text)
	}
}

func TestFromStore(t *testing.T) {
	data, err := docx.New("test").Serialize(sampleSpec(document.FormatDOCX), nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	ctx := context.Background()
	store := local.New(t.TempDir())
	if _, err := store.Put(ctx, "owner/exports/1_Memorandum.docx", docx.ContentType, bytes.NewReader(data)); err != nil {
		t.Fatalf("put: %v", err)
	}

	text, err := FromStore(ctx, store, "owner/exports/1_Memorandum.docx", docx.ContentType, "Memorandum.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Office relocation") {
		t.Fatalf("unexpected text %q", text)
	}

	if _, err := FromStore(ctx, store, "owner/exports/missing.docx", "", ""); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlainZipIsUnsupported(t *testing.T) {
	data := zipWith(t, "notes.txt", "hello")
	if kind := Detect(data, "application/zip", "notes.zip"); kind != KindUnknown {
		t.Fatalf("expected unknown kind, got %q", kind)
	}
	_, err := FromBytes(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	docxZip := zipWith(t, "word/document.xml", "<w:document/>")
	cases := []struct {
		name string
		data []byte
		mime string
		file string
		want Kind
	}{
		{"explicit pdf mime", nil, "application/pdf; charset=binary", "", KindPDF},
		{"explicit docx mime", nil, mimeDOCX, "", KindDOCX},
		{"pdf magic", []byte("%PDF-1.7\n"), "application/octet-stream", "", KindPDF},
		{"docx zip", docxZip, "", "", KindDOCX},
		{"pdf extension", []byte("junk"), "", "report.PDF", KindPDF},
		{"plain text", []byte("hello"), "text/plain", "a.txt", KindUnknown},
	}
	for _, tc := range cases {
		if got := Detect(tc.data, tc.mime, tc.file); got != tc.want {
			t.Fatalf("%s: Detect = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestWordprocessingText(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Tax Invoice</w:t></w:r></w:p>` +
		`<w:p></w:p><w:p></w:p>` +
		`<w:tbl><w:tr>` +
		`<w:tc><w:p><w:r><w:t>Widget</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc>` +
		`</w:tr></w:tbl>` +
		`<w:p><w:r><w:t>Total</w:t><w:tab/><w:t xml:space="preserve">230.00 </w:t></w:r></w:p>` +
		`<w:p><w:r><w:instrText>PAGE</w:instrText></w:r></w:p>` +
		`</w:body></w:document>`

	got, err := wordprocessingText(strings.NewReader(body))
	if err != nil {
		t.Fatalf("wordprocessingText: %v", err)
	}
	want := "Tax Invoice\n\nWidget\n\t2\n\tTotal\t230.00"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

package exports

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"docforms-backend/internal/document"
	"docforms-backend/internal/document/docx"
	"docforms-backend/internal/document/pdf"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/sessions"
	"docforms-backend/internal/shared/storage/object"
	"docforms-backend/internal/shared/storage/object/local"
	"docforms-backend/internal/signature"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	svc      *Service
	repo     *MemoryRepo
	sessions *sessions.Store
	registry *forms.Registry
}

func newFixture(t *testing.T, archive bool) fixture {
	t.Helper()
	reg, err := forms.NewRegistry(forms.Options{})
	require.NoError(t, err)
	store := sessions.NewStore(reg)
	repo := NewMemoryRepo()
	svc := &Service{
		Registry:  reg,
		Assembler: document.NewAssembler(docx.New("test"), pdf.New("test")),
		Sessions:  store,
		Repo:      repo,
		Store:     local.New(t.TempDir()),
		Archive:   archive,
		Now:       func() time.Time { return time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC) },
	}
	return fixture{svc: svc, repo: repo, sessions: store, registry: reg}
}

func strokeInput() SignatureInput {
	return SignatureInput{Strokes: []signature.Stroke{{{X: 10, Y: 40}, {X: 60, Y: 20}, {X: 120, Y: 60}}}}
}

func dataURLInput(t *testing.T) SignatureInput {
	t.Helper()
	img, err := signature.Render([]signature.Stroke{{{X: 5, Y: 5}, {X: 80, Y: 30}}}, signature.Options{})
	require.NoError(t, err)
	return SignatureInput{DataURL: signature.EncodeDataURL(img)}
}

func sampleRequest(t *testing.T, reg *forms.Registry, docType string) Request {
	t.Helper()
	fs, ok := forms.Sample(docType)
	require.True(t, ok)
	def, err := reg.Get(docType)
	require.NoError(t, err)
	req := Request{FieldSet: fs, Signatures: map[string]SignatureInput{}}
	for i, slot := range def.Signatures {
		if i%2 == 0 {
			req.Signatures[slot.Key] = dataURLInput(t)
		} else {
			req.Signatures[slot.Key] = strokeInput()
		}
	}
	return req
}

func TestExportArchivesArtifact(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	res, err := f.svc.Export(ctx, "guest:a", "purchase-order", sampleRequest(t, f.registry, "purchase-order"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.Export.ID)
	assert.Regexp(t, document.ReferencePattern, res.Export.ReferenceNo)
	assert.Equal(t, "Purchase-Order-"+res.Export.ReferenceNo+".docx", res.Artifact.FileName)
	assert.Equal(t, int64(len(res.Artifact.Bytes)), res.Export.SizeBytes)

	got, rc, err := f.svc.Open(ctx, "guest:a", res.Export.ID)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, res.Artifact.Bytes, stored)
	assert.Equal(t, docx.ContentType, got.MimeType)

	_, _, err = f.svc.Open(ctx, "guest:b", res.Export.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExportUsesSessionReference(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	session, err := f.sessions.Create(ctx, "guest:a", "acceptance-letter")
	require.NoError(t, err)

	req := sampleRequest(t, f.registry, "acceptance-letter")
	req.SessionID = session.ID
	for i := 0; i < 2; i++ {
		res, err := f.svc.Export(ctx, "guest:a", "acceptance-letter", req)
		require.NoError(t, err)
		assert.Equal(t, session.ReferenceNo, res.Export.ReferenceNo)
		assert.Equal(t, "Acceptance-Letter-"+session.ReferenceNo+".docx", res.Artifact.FileName)
		assert.Empty(t, res.Export.ID, "archiving disabled")
	}

	_, err = f.svc.Export(ctx, "guest:a", "notice-letter", req)
	assert.ErrorIs(t, err, sessions.ErrTypeMismatch)
}

func TestExportMissingSignatureArchivesNothing(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	req := sampleRequest(t, f.registry, "memorandum")
	req.Signatures = nil

	_, err := f.svc.Export(ctx, "guest:a", "memorandum", req)
	require.ErrorIs(t, err, document.ErrMissingSignature)
	var missing *document.MissingSignatureError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Please provide the Signature.", missing.Error())

	items, err := f.svc.List(ctx, "guest:a", Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExportMalformedSignature(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	cases := map[string]string{
		"bad data url": "data:image/png;base64,@@@",
		"not an image": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("definitely not a png")),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			req := sampleRequest(t, f.registry, "memorandum")
			req.Signatures["signature"] = SignatureInput{DataURL: raw}
			_, err := f.svc.Export(ctx, "guest:a", "memorandum", req)
			assert.ErrorIs(t, err, document.ErrMalformedImageData)
		})
	}
	items, err := f.svc.List(ctx, "guest:a", Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExportReportsMissingSignatureBeforeMalformedOptional(t *testing.T) {
	f := newFixture(t, true)
	req := sampleRequest(t, f.registry, "leave-application")
	delete(req.Signatures, "employee")
	req.Signatures["supervisor"] = SignatureInput{DataURL: "data:image/png;base64,!!!"}

	_, err := f.svc.Export(context.Background(), "guest:a", "leave-application", req)
	var missing *document.MissingSignatureError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "employee", missing.Key)
}

func TestExportMalformedOptionalSignature(t *testing.T) {
	f := newFixture(t, true)
	req := sampleRequest(t, f.registry, "leave-application")
	req.Signatures["hr"] = SignatureInput{DataURL: "data:image/png;base64,!!!"}

	_, err := f.svc.Export(context.Background(), "guest:a", "leave-application", req)
	var malformed *document.MalformedImageError
	require.True(t, errors.As(err, &malformed), "got %v", err)
	assert.Equal(t, "hr", malformed.Slot)
}

func longStroke(n int) signature.Stroke {
	stroke := make(signature.Stroke, n)
	for i := range stroke {
		stroke[i] = signature.Point{X: float64(i % 370), Y: float64(10 + (i/370)%130)}
	}
	return stroke
}

func TestExportRejectsOversizedStrokes(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	t.Run("per signature", func(t *testing.T) {
		req := sampleRequest(t, f.registry, "memorandum")
		req.Signatures["signature"] = SignatureInput{Strokes: []signature.Stroke{longStroke(signature.MaxPoints + 1)}}
		_, err := f.svc.Export(ctx, "guest:a", "memorandum", req)
		var verr *forms.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		require.Len(t, verr.Issues, 1)
		assert.Equal(t, "signatures.signature", verr.Issues[0].Field)
	})

	t.Run("per request", func(t *testing.T) {
		req := sampleRequest(t, f.registry, "leave-application")
		for _, key := range []string{"employee", "supervisor", "hr"} {
			req.Signatures[key] = SignatureInput{Strokes: []signature.Stroke{longStroke(signature.MaxPoints)}}
		}
		_, err := f.svc.Export(ctx, "guest:a", "leave-application", req)
		var verr *forms.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Equal(t, "signatures", verr.Issues[0].Field)
	})

	items, err := f.svc.List(ctx, "guest:a", Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExportRendersSignatureAtPointLimit(t *testing.T) {
	f := newFixture(t, false)
	req := sampleRequest(t, f.registry, "memorandum")
	req.Signatures["signature"] = SignatureInput{Strokes: []signature.Stroke{longStroke(signature.MaxPoints)}}

	start := time.Now()
	res, err := f.svc.Export(context.Background(), "guest:a", "memorandum", req)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Artifact.Bytes)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExportValidationError(t *testing.T) {
	f := newFixture(t, true)
	req := sampleRequest(t, f.registry, "tax-invoice")
	req.LineItems = nil

	_, err := f.svc.Export(context.Background(), "guest:a", "tax-invoice", req)
	var verr *forms.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, forms.ErrInvalidInput)
}

func TestExportUnknownType(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.svc.Export(context.Background(), "guest:a", "payslip", Request{})
	assert.ErrorIs(t, err, forms.ErrUnknownType)
}

func TestConcurrentExportsAreIndependent(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	docTypes := []string{"memorandum", "tax-invoice", "log-sheet", "notice-letter", "leave-application", "site-incident-report"}

	reqs := make([]Request, len(docTypes))
	for i, docType := range docTypes {
		reqs[i] = sampleRequest(t, f.registry, docType)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(docTypes))
	for i, docType := range docTypes {
		wg.Add(1)
		go func(i int, docType string) {
			defer wg.Done()
			_, errs[i] = f.svc.Export(ctx, "guest:a", docType, reqs[i])
		}(i, docType)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, docTypes[i])
	}

	items, err := f.svc.List(ctx, "guest:a", Page{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, items, len(docTypes))
}

func TestTextReadsArchivedExport(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	res, err := f.svc.Export(ctx, "google:1", "tax-invoice", sampleRequest(t, f.registry, "tax-invoice"))
	require.NoError(t, err)

	export, text, err := f.svc.Text(ctx, "google:1", res.Export.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Export.ID, export.ID)
	assert.Contains(t, text, res.Export.ReferenceNo)

	_, _, err = f.svc.Text(ctx, "google:2", res.Export.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

type failingRepo struct{ *MemoryRepo }

func (failingRepo) Insert(context.Context, Export) error { return errors.New("db down") }

func TestArchiveRecordFailureRemovesObject(t *testing.T) {
	f := newFixture(t, true)
	dir := t.TempDir()
	f.svc.Store = local.New(dir)
	f.svc.Repo = failingRepo{f.repo}

	res, err := f.svc.Export(context.Background(), "guest:a", "memorandum", sampleRequest(t, f.registry, "memorandum"))
	require.NoError(t, err, "archive failures do not fail the export")
	assert.Empty(t, res.Export.ID)
	assert.NotEmpty(t, res.Artifact.Bytes)

	entries, err := os.ReadDir(filepath.Join(dir, object.OwnerPrefix("guest:a"), "exports"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenMissingObjectIsNotArchived(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	res, err := f.svc.Export(ctx, "guest:a", "memorandum", sampleRequest(t, f.registry, "memorandum"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Store.Delete(ctx, res.Export.StorageKey))

	_, _, err = f.svc.Open(ctx, "guest:a", res.Export.ID)
	assert.ErrorIs(t, err, ErrNotArchived)
	_, _, err = f.svc.Text(ctx, "guest:a", res.Export.ID)
	assert.ErrorIs(t, err, ErrNotArchived)
}

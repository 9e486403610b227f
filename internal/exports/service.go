package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docforms-backend/internal/document"
	"docforms-backend/internal/extract"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/shared/metrics"
	"docforms-backend/internal/shared/storage/object"
	"docforms-backend/internal/shared/telemetry"
)

// Request is one export submission: the form state plus its signatures.
type Request struct {
	SessionID string `json:"sessionId,omitempty"`
	forms.FieldSet
	Signatures map[string]SignatureInput `json:"signatures,omitempty"`
}

// Result is a finished export. Export.ID is empty when the artifact was not archived.
type Result struct {
	Export   Export
	Artifact document.ExportArtifact
}

// ReferenceSource resolves a form session to its reference number.
type ReferenceSource interface {
	Reference(ctx context.Context, userID, sessionID, docType string) (string, error)
}

// Service validates, assembles and archives exports.
type Service struct {
	Registry  *forms.Registry
	Assembler *document.Assembler
	Sessions  ReferenceSource
	Repo      Repo
	Store     object.Store
	Archive   bool
	Now       func() time.Time
}

// Export runs one export for userID. Nothing is archived unless assembly succeeds.
func (s *Service) Export(ctx context.Context, userID, docType string, req Request) (Result, error) {
	if s.Registry == nil || s.Assembler == nil {
		return Result{}, errors.New("missing dependencies")
	}
	start := time.Now()
	metrics.ExportStarted()

	res, err := s.export(ctx, userID, docType, req)
	metrics.ExportFinished(docType, err, time.Since(start))
	if err != nil {
		telemetry.Warn("export.failed", map[string]any{
			"user_id":  userID,
			"doc_type": docType,
			"error":    err,
		})
		return Result{}, err
	}

	telemetry.Info("export.completed", map[string]any{
		"user_id":      userID,
		"doc_type":     docType,
		"export_id":    res.Export.ID,
		"reference_no": res.Export.ReferenceNo,
		"file_name":    res.Artifact.FileName,
		"size_bytes":   len(res.Artifact.Bytes),
	})
	return res, nil
}

func (s *Service) export(ctx context.Context, userID, docType string, req Request) (Result, error) {
	ref := ""
	if req.SessionID != "" {
		if s.Sessions == nil {
			return Result{}, fmt.Errorf("%w: sessions unavailable", ErrInvalidInput)
		}
		var err error
		ref, err = s.Sessions.Reference(ctx, userID, req.SessionID, docType)
		if err != nil {
			return Result{}, err
		}
	}

	spec, err := s.Registry.Build(docType, req.FieldSet, ref)
	if err != nil {
		return Result{}, err
	}
	images, err := resolveSignatures(spec.Type, spec.Signatures, req.Signatures)
	if err != nil {
		return Result{}, err
	}
	artifact, err := s.Assembler.Assemble(ctx, spec, images)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Artifact: artifact,
		Export: Export{
			UserID:      userID,
			DocType:     spec.Type,
			Format:      string(spec.Format),
			FileName:    artifact.FileName,
			ReferenceNo: spec.Reference,
			MimeType:    artifact.ContentType,
			SizeBytes:   int64(len(artifact.Bytes)),
			CreatedAt:   s.now().UTC(),
		},
	}
	if s.Archive && s.Store != nil && s.Repo != nil {
		// A failed archive is logged; the caller still gets the artifact.
		if err := s.archive(ctx, &res.Export, artifact); err != nil {
			telemetry.Error("export.archive_failed", map[string]any{
				"user_id":  userID,
				"doc_type": spec.Type,
				"error":    err,
			})
			res.Export.ID = ""
			res.Export.StorageKey = ""
		}
	}
	return res, nil
}

func (s *Service) archive(ctx context.Context, export *Export, artifact document.ExportArtifact) error {
	id := uuid.NewString()
	key, err := object.ExportKey(export.UserID, id, artifact.FileName)
	if err != nil {
		return err
	}
	if _, err := s.Store.Put(ctx, key, artifact.ContentType, bytes.NewReader(artifact.Bytes)); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	export.ID = id
	export.StorageKey = key
	if err := s.Repo.Insert(ctx, *export); err != nil {
		// An unrecorded object can never be listed or downloaded.
		if delErr := s.Store.Delete(ctx, key); delErr != nil {
			telemetry.Warn("export.orphan_cleanup_failed", map[string]any{
				"storage_key": key,
				"error":       delErr,
			})
		}
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// Get returns one of userID's exports; another user's export is ErrForbidden.
func (s *Service) Get(ctx context.Context, userID, exportID string) (Export, error) {
	if userID == "" || exportID == "" {
		return Export{}, ErrInvalidInput
	}
	if s.Repo == nil {
		return Export{}, ErrNotFound
	}
	export, err := s.Repo.Find(ctx, exportID)
	if err != nil {
		return Export{}, err
	}
	if export.UserID != userID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// List returns a page of userID's history, newest first.
func (s *Service) List(ctx context.Context, userID string, page Page) ([]Export, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if s.Repo == nil {
		return []Export{}, nil
	}
	return s.Repo.History(ctx, userID, page)
}

// Open returns the export record and a reader over its archived bytes.
func (s *Service) Open(ctx context.Context, userID, exportID string) (Export, io.ReadCloser, error) {
	export, err := s.Get(ctx, userID, exportID)
	if err != nil {
		return Export{}, nil, err
	}
	if export.StorageKey == "" || s.Store == nil {
		return Export{}, nil, ErrNotArchived
	}
	rc, err := s.Store.Open(ctx, export.StorageKey)
	if errors.Is(err, object.ErrNotFound) {
		return Export{}, nil, ErrNotArchived
	}
	if err != nil {
		return Export{}, nil, err
	}
	return export, rc, nil
}

// Text returns the plain text of an archived export.
func (s *Service) Text(ctx context.Context, userID, exportID string) (Export, string, error) {
	export, err := s.Get(ctx, userID, exportID)
	if err != nil {
		return Export{}, "", err
	}
	if export.StorageKey == "" || s.Store == nil {
		return Export{}, "", ErrNotArchived
	}
	text, err := extract.FromStore(ctx, s.Store, export.StorageKey, export.MimeType, export.FileName)
	if errors.Is(err, object.ErrNotFound) {
		return Export{}, "", ErrNotArchived
	}
	if err != nil {
		return Export{}, "", err
	}
	return export, text, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

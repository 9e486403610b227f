package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Serializer turns a Spec into file bytes. Implementations must not retain images.
type Serializer interface {
	Format() Format
	ContentType() string
	Serialize(spec Spec, images map[string]SignatureImage) ([]byte, error)
}

// Assembler validates a Spec and dispatches it to the serializer for its format.
type Assembler struct {
	serializers map[Format]Serializer
}

// NewAssembler registers serializers by their format. Later registrations win.
func NewAssembler(serializers ...Serializer) *Assembler {
	a := &Assembler{serializers: make(map[Format]Serializer, len(serializers))}
	for _, s := range serializers {
		if s != nil {
			a.serializers[s.Format()] = s
		}
	}
	return a
}

// Supports reports whether a serializer exists for f.
func (a *Assembler) Supports(f Format) bool {
	_, ok := a.serializers[f]
	return ok
}

// Assemble produces the artifact for spec. The images map is keyed by slot key and
// is copied before serialization; the caller's buffers are never modified.
func (a *Assembler) Assemble(ctx context.Context, spec Spec, images map[string]SignatureImage) (ExportArtifact, error) {
	if err := ctx.Err(); err != nil {
		return ExportArtifact{}, err
	}
	if strings.TrimSpace(spec.Title) == "" {
		return ExportArtifact{}, fmt.Errorf("%w: title is required", ErrInvalidSpec)
	}
	if strings.TrimSpace(spec.FileName) == "" {
		return ExportArtifact{}, fmt.Errorf("%w: file name is required", ErrInvalidSpec)
	}

	for _, slot := range spec.Signatures {
		if slot.Required && images[slot.Key].IsEmpty() {
			return ExportArtifact{}, &MissingSignatureError{Key: slot.Key, Slot: slot.Name}
		}
	}

	serializer, ok := a.serializers[spec.Format]
	if !ok {
		return ExportArtifact{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, spec.Format)
	}

	snapshot := make(map[string]SignatureImage, len(spec.Signatures))
	for _, slot := range spec.Signatures {
		if img := images[slot.Key]; !img.IsEmpty() {
			snapshot[slot.Key] = img.Clone()
		}
	}

	data, err := serializer.Serialize(spec, snapshot)
	if err != nil {
		var malformed *MalformedImageError
		if errors.As(err, &malformed) {
			return ExportArtifact{}, err
		}
		return ExportArtifact{}, fmt.Errorf("serialize %s %s: %w", spec.Format, spec.Type, err)
	}
	if len(data) == 0 {
		return ExportArtifact{}, fmt.Errorf("serialize %s %s: empty output", spec.Format, spec.Type)
	}

	return ExportArtifact{
		FileName:    spec.FileName,
		ContentType: serializer.ContentType(),
		Bytes:       data,
	}, nil
}

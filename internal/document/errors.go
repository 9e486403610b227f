package document

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSignature indicates a required signature slot holds no image.
	ErrMissingSignature = errors.New("missing signature")

	// ErrMalformedImageData indicates signature bytes could not be decoded while embedding.
	ErrMalformedImageData = errors.New("malformed image data")

	// ErrInvalidSpec indicates the document spec itself is unusable.
	ErrInvalidSpec = errors.New("invalid document spec")

	// ErrUnsupportedFormat indicates no serializer is registered for the format.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// MissingSignatureError names the slot that blocked an export.
type MissingSignatureError struct {
	Key  string
	Slot string
}

func (e *MissingSignatureError) Error() string {
	return fmt.Sprintf("Please provide the %s.", e.Slot)
}

func (e *MissingSignatureError) Is(target error) bool {
	return target == ErrMissingSignature
}

// MalformedImageError wraps a decode failure for one slot.
type MalformedImageError struct {
	Slot string
	Err  error
}

func (e *MalformedImageError) Error() string {
	return fmt.Sprintf("signature %q: %v", e.Slot, e.Err)
}

func (e *MalformedImageError) Unwrap() error {
	return e.Err
}

func (e *MalformedImageError) Is(target error) bool {
	return target == ErrMalformedImageData
}

package forms

import "errors"

var (
	// ErrUnknownType indicates no definition exists for the document type.
	ErrUnknownType = errors.New("unknown document type")

	// ErrInvalidInput indicates the submitted field set failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDefinition indicates a definition file is unusable.
	ErrInvalidDefinition = errors.New("invalid form definition")
)

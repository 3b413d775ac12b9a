package extract

import (
	"errors"
	"fmt"
)

// Field names used in errors, logs and metrics
const (
	FieldCategory    = "category"
	FieldID          = "id"
	FieldPicarats    = "picarats"
	FieldDescription = "description"
	FieldSolution    = "solution"
	FieldHint        = "hint"
)

var (
	// ErrMissingAttribute means a located element lacks an attribute the template always sets
	ErrMissingAttribute = errors.New("missing attribute")

	// ErrEmptyValue means a located value element has no content
	ErrEmptyValue = errors.New("empty value")

	// ErrUnexpectedShape means a located element has content of the wrong kind
	ErrUnexpectedShape = errors.New("unexpected element shape")

	// ErrUnknownSlot means a hint slot outside the palette was requested
	ErrUnknownSlot = errors.New("unknown hint slot")
)

// ExtractionError reports a page whose markup did not have the shape an
// extractor expected. A missing section is not an extraction error.
type ExtractionError struct {
	Field      string
	DocumentID string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s from %s: %v", e.Field, e.DocumentID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func fieldError(field, docID string, err error) error {
	return &ExtractionError{Field: field, DocumentID: docID, Err: err}
}

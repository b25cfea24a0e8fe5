package annotation

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedAnnotation reports a document that is not JSON or lacks levels[0].items[0].labels.
	ErrMalformedAnnotation = errors.New("malformed annotation")
	// ErrRequiredFieldMissing reports an absent required field in fixed-schema mode.
	ErrRequiredFieldMissing = errors.New("required field missing")
	// ErrInvalidFieldType reports a field whose value cannot be coerced to its schema type.
	ErrInvalidFieldType = errors.New("invalid field type")
)

// FieldError describes a fixed-schema coercion failure.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrRequiredFieldMissing) {
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %q value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

package scrape

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound means no table matched in the live document or its comments.
	ErrTableNotFound = errors.New("table not found")

	// ErrMalformedCell means a present cell did not parse as its declared kind.
	ErrMalformedCell = errors.New("malformed cell")
)

// CoercionError reports the field and raw text of a cell that failed to coerce.
type CoercionError struct {
	Field string
	Kind  Kind
	Raw   string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("field %s: %q is not a valid %s", e.Field, e.Raw, e.Kind)
}

func (e *CoercionError) Unwrap() error {
	return ErrMalformedCell
}

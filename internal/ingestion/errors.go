package ingestion

import (
	"errors"
	"fmt"

	"github.com/shsdb/reconciler/internal/domain"
)

var (
	// ErrHeaderInvalid rejects a whole file: an unknown or repeated column,
	// or for the strict family a header that is not the canonical one.
	ErrHeaderInvalid = errors.New("header invalid")
	// ErrRowShapeInvalid rejects a whole strict-family file when one row has
	// the wrong number of delimiters.
	ErrRowShapeInvalid = errors.New("row shape invalid")
	// ErrFieldDecode marks a row whose mandatory field is missing or whose
	// field value could not be parsed.
	ErrFieldDecode = errors.New("field decode failed")
	// ErrNoData is returned for a file without a header line.
	ErrNoData = errors.New("no data")

	errMissing = errors.New("mandatory value missing")
)

// FieldError locates a field decode failure.
type FieldError struct {
	Line   int
	Column domain.Column
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d %s: %v", e.Line, e.Column, e.Err)
}

func (e *FieldError) Unwrap() []error { return []error{ErrFieldDecode, e.Err} }

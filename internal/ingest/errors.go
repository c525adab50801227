package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientRows is returned when the uploaded file has no data lines
// after the header (or no header at all).
var ErrInsufficientRows = errors.New("file must contain a header line and at least one data line")

// MissingColumnError is a file-level error: a required logical field could
// not be matched against any header label. Resolution stops at the first
// missing field.
type MissingColumnError struct {
	Field    Field
	Accepted []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column for %q (accepted names: %s)",
		string(e.Field), strings.Join(e.Accepted, ", "))
}

// InsufficientFieldsError is a row-level error: the line has fewer fields
// than the resolved column map requires.
type InsufficientFieldsError struct {
	Line        int
	ExpectedMin int
}

func (e *InsufficientFieldsError) Error() string {
	return fmt.Sprintf("line %d: expected at least %d fields", e.Line, e.ExpectedMin)
}

// EmptyFieldError is a row-level error: a required field is present in the
// column map but empty on this line.
type EmptyFieldError struct {
	Line  int
	Field Field
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("line %d: required field %q is empty", e.Line, string(e.Field))
}

// InvalidNumberError is a row-level error: the gmv value did not parse to a
// finite number after stripping currency symbols.
type InvalidNumberError struct {
	Line int
	Raw  string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("line %d: invalid number %q", e.Line, e.Raw)
}

// IsRowError reports whether err is one of the per-line error kinds that are
// collected without aborting the rest of the file.
func IsRowError(err error) bool {
	var insufficientFields *InsufficientFieldsError
	var emptyField *EmptyFieldError
	var invalidNumber *InvalidNumberError
	return errors.As(err, &insufficientFields) ||
		errors.As(err, &emptyField) ||
		errors.As(err, &invalidNumber)
}

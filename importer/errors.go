package importer

import "fmt"

// RowErrorKind classifies why a row was not imported.
type RowErrorKind string

const (
	ValidationError    RowErrorKind = "validation"
	NormalizationError RowErrorKind = "normalization"
	DuplicateError     RowErrorKind = "duplicate"
	PersistenceError   RowErrorKind = "persistence"
)

// RowError is a row-level failure. Message is the user-facing line.
type RowError struct {
	Row     int
	Kind    RowErrorKind
	Message string
}

func (e RowError) Error() string {
	return e.Message
}

func newRowError(row int, kind RowErrorKind, format string, args ...any) *RowError {
	return &RowError{
		Row:     row,
		Kind:    kind,
		Message: fmt.Sprintf("Row %d: ", row) + fmt.Sprintf(format, args...),
	}
}

// FatalError aborts an import before any row is processed.
type FatalError struct {
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

package core

import (
	"errors"
	"fmt"
)

// ErrTooManyGenerations is returned when all generation slots are occupied and
// the wait timeout expires. Clients should retry after a short delay.
var ErrTooManyGenerations = errors.New("too many concurrent generations, please try again later")

// EmptyInputError reports a spreadsheet with a header row but no data rows.
type EmptyInputError struct {
	Sheet string // file name, if known
}

func (e *EmptyInputError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("empty sheet: %s has no data rows", e.Sheet)
	}
	return "empty sheet: no data rows"
}

// MarkerNotFoundError reports that the configured marker text does not occur
// in the template. Scope is where the search looked.
type MarkerNotFoundError struct {
	Marker string
	Scope  Scope
}

func (e *MarkerNotFoundError) Error() string {
	where := "the document body"
	if e.Scope == ScopeAll {
		where = "the document (body, tables, headers and footers)"
	}
	return fmt.Sprintf("marker not found: %q does not appear in %s", e.Marker, where)
}

// NoOrderableColumnError reports that no column can be used to sort records.
// Column is the requested name, or "" when none could be guessed.
type NoOrderableColumnError struct {
	Column    string
	Available []string
}

func (e *NoOrderableColumnError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("order column not found: %q (available: %v)", e.Column, e.Available)
	}
	return fmt.Sprintf("order column not found: no identifier column detected, choose one explicitly (available: %v)", e.Available)
}

// DecodeError wraps a failure to decode spreadsheet or document bytes.
type DecodeError struct {
	Source string // "sheet" or "document"
	Name   string // file name, if known
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("decode %s %s: %v", e.Source, e.Name, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StageError records the last pipeline stage a failed generation reached.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("generation failed after %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

package report

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for load errors.
var (
	ErrOngoingStart = errors.New("start date has no defined day")
)

// SchemaError reports required columns missing from the report header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// RowParseError wraps a date normalization failure with the row it
// happened on. Row numbering is 1-based over data rows, header
// excluded.
type RowParseError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("row %d: column %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }

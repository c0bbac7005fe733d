package dates

import (
	"errors"
	"fmt"
)

// Sentinel kinds for normalizer configuration errors.
var (
	ErrUnknownPattern = errors.New("unknown date pattern")
	ErrNoPatterns     = errors.New("no date patterns configured")
)

// UnparseableDateError reports a date cell that matched none of the
// configured formats.
type UnparseableDateError struct {
	Raw string
}

func (e *UnparseableDateError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Raw)
}

// Package model contains domain models passed between layers.
package model

import (
	"time"

	dates "github.com/okian/tandem/internal/domain/dates"
)

// AssignmentRecord is one employee-project assignment as loaded from a
// report. Records are created once by the loader and never mutated.
type AssignmentRecord struct {
	EmpID     string     // employee identifier
	ProjectID string     // project identifier
	From      dates.Date // assignment start, always a concrete day
	To        dates.End  // assignment end, possibly ongoing
}

// PairOverlap is the overlap of two employees' assignments on one
// shared project. EmployeeA always precedes EmployeeB under the
// identifier order, and Days is strictly positive; rows that would
// violate either never leave the engine.
type PairOverlap struct {
	EmployeeA string
	EmployeeB string
	ProjectID string
	Days      int64 // whole days of overlap
}

// TopPair is the employee pair with the greatest overlap summed across
// every project they shared. Derived per computation, never stored.
type TopPair struct {
	EmployeeA string
	EmployeeB string
	TotalDays int64
	Projects  int // shared projects contributing positive overlap
}

// Report is the outcome of one all-overlaps computation.
type Report struct {
	EvaluatedAt       time.Time // instant ongoing assignments were resolved against
	RowsLoaded        int
	RowsSkipped       int // field-count mismatches dropped by the loader
	DuplicatesDropped int // exact duplicates dropped when filtering is on
	Overlaps          []PairOverlap
}

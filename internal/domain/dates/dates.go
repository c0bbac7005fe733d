// Package dates normalizes assignment date cells across the supported
// input formats and carries the canonical calendar-day representation
// used by the rest of the domain.
package dates

import "time"

// canonicalLayout is the layout of Date.String. It is also the layout
// of the first default pattern, so normalizing a canonical string
// returns the same date.
const canonicalLayout = "2006-01-02"

// Date is a canonical calendar day, pinned to midnight UTC and
// decoupled from whatever input format produced it.
type Date struct {
	t time.Time
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time returns the day as midnight UTC.
func (d Date) Time() time.Time { return d.t }

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string { return d.t.Format(canonicalLayout) }

// Before reports whether d falls before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d falls after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// End is the end bound of an assignment: either a fixed calendar day or
// the ongoing sentinel meaning "no defined end, still active". The
// tagged form forces every consumer to handle the open-ended branch
// instead of tripping over a magic nil.
type End struct {
	date    Date
	ongoing bool
}

// Fixed wraps a concrete end day.
func Fixed(d Date) End { return End{date: d} }

// Ongoing returns the open-ended sentinel.
func Ongoing() End { return End{ongoing: true} }

// IsOngoing reports whether the end is open.
func (e End) IsOngoing() bool { return e.ongoing }

// Date returns the fixed end day. It reports false for the ongoing
// sentinel, whose day is undefined until resolved.
func (e End) Date() (Date, bool) {
	if e.ongoing {
		return Date{}, false
	}
	return e.date, true
}

// Resolve collapses the end to an instant: the fixed day's midnight, or
// eval for the ongoing sentinel. Callers resolve every ongoing end in
// one computation against the same eval so open intervals stay
// comparable.
func (e End) Resolve(eval time.Time) time.Time {
	if e.ongoing {
		return eval
	}
	return e.date.t
}

// String renders the fixed day canonically, or "ongoing".
func (e End) String() string {
	if e.ongoing {
		return "ongoing"
	}
	return e.date.String()
}

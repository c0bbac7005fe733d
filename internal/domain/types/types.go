// Package types contains common types used across the application
package types

import "strings"

// Entry represents a ranked employee pair with its accumulated overlap.
type Entry struct {
	Rank      int    `json:"rank"`
	EmployeeA string `json:"employee_a"`
	EmployeeB string `json:"employee_b"`
	TotalDays int64  `json:"total_days"`
	Projects  int    `json:"projects"`
}

// keySep separates the two employee IDs inside a pair key. A unit
// separator keeps keys collision-free for IDs containing printable
// punctuation.
const keySep = "\x1f"

// Pair is an unordered employee pair in canonical form: A precedes B
// under CompareIDs, so every unordered pair has exactly one
// representation and self-pairs cannot be constructed.
type Pair struct {
	A string
	B string
}

// NewPair canonicalizes two employee IDs into a Pair. It reports false
// when the IDs are equal, since an employee cannot pair with themself.
func NewPair(a, b string) (Pair, bool) {
	switch CompareIDs(a, b) {
	case 0:
		return Pair{}, false
	case 1:
		a, b = b, a
	}
	return Pair{A: a, B: b}, true
}

// Key returns a deterministic string key for map and store indexing.
func (p Pair) Key() string {
	return p.A + keySep + p.B
}

// PairFromKey is the inverse of Key. It reports false for strings that
// did not come from Key.
func PairFromKey(key string) (Pair, bool) {
	a, b, ok := strings.Cut(key, keySep)
	if !ok {
		return Pair{}, false
	}
	return Pair{A: a, B: b}, true
}

// ComparePairs orders pairs by A, then B, under CompareIDs.
func ComparePairs(p, q Pair) int {
	if c := CompareIDs(p.A, q.A); c != 0 {
		return c
	}
	return CompareIDs(p.B, q.B)
}

// CompareIDs is the total order over employee and project identifiers:
// -1 when a sorts before b, 0 when equal, 1 otherwise. Identifiers that
// are both non-empty digit strings compare numerically, the way the
// usual integer ID columns sort; anything else compares bytewise.
// Datasets are expected to use one identifier style throughout.
func CompareIDs(a, b string) int {
	if a == b {
		return 0
	}
	if allDigits(a) && allDigits(b) {
		if c := compareNumeric(a, b); c != 0 {
			return c
		}
		// Same value spelled differently ("007" vs "7"): fall through
		// to bytewise so distinct identifiers never compare equal.
	}
	return strings.Compare(a, b)
}

// LessID reports whether a sorts strictly before b under CompareIDs.
func LessID(a, b string) bool {
	return CompareIDs(a, b) < 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// compareNumeric compares two digit strings by value without parsing
// them into integers, so arbitrarily long IDs cannot overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

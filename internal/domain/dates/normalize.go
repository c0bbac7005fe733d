package dates

import (
	"fmt"
	"strings"
	"time"
)

// nullToken is the cell value treated as the ongoing sentinel,
// case-insensitively, alongside the empty cell.
const nullToken = "NULL"

// DefaultPatterns returns the priority order candidate formats are
// tried in: ISO first, then the locale variants seen in real exports.
// The first match wins, so more specific spellings come before the
// ambiguous day/month ones they could be mistaken for.
func DefaultPatterns() []string {
	return []string{
		"YYYY-MM-DD",
		"MM/DD/YYYY",
		"DD/MM/YYYY",
		"DD-Mon-YY",
		"YYYY/MM/DD",
		"MM-DD-YYYY",
		"MM-DD-YY",
		"DD-MM-YYYY",
	}
}

// patternTokens maps display-pattern tokens to Go time layouts. Order
// matters: longer tokens first so "YYYY" is not consumed as two "YY"s.
var patternTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"Mon", "Jan"},
	{"MM", "01"},
	{"DD", "02"},
	{"YY", "06"},
}

// LayoutForPattern compiles a display pattern such as "DD-Mon-YY" into
// the equivalent Go time layout. Letters and digits outside the known
// tokens are rejected so a typo fails fast instead of silently parsing
// nothing.
func LayoutForPattern(pattern string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, t := range patternTokens {
			if strings.HasPrefix(pattern[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		c := pattern[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			return "", &patternError{pattern: pattern}
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), nil
}

// patternError carries the offending pattern while matching
// ErrUnknownPattern under errors.Is.
type patternError struct {
	pattern string
}

func (e *patternError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownPattern, e.pattern)
}

func (e *patternError) Unwrap() error { return ErrUnknownPattern }

// parseStrict parses raw against layout and insists on an exact
// round-trip: the parsed day re-formatted with the same layout must
// reproduce raw byte for byte.
func parseStrict(layout, raw string) (time.Time, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(layout) != raw {
		return time.Time{}, fmt.Errorf("%q does not round-trip as %q", raw, layout)
	}
	return t, nil
}

// Normalizer parses date cells against an ordered list of candidate
// formats. The list is explicit configuration rather than ambient
// state, so tests and deployments can pin their own priority order.
type Normalizer struct {
	patterns []string
	layouts  []string
}

// NewNormalizer builds a Normalizer, compiling the configured display
// patterns into layouts. It fails when the list is empty or contains an
// unknown pattern.
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{patterns: DefaultPatterns()}

	for _, opt := range opts {
		opt(n)
	}

	if len(n.patterns) == 0 {
		return nil, ErrNoPatterns
	}
	n.layouts = make([]string, len(n.patterns))
	for i, p := range n.patterns {
		layout, err := LayoutForPattern(p)
		if err != nil {
			return nil, err
		}
		n.layouts[i] = layout
	}
	return n, nil
}

// Patterns returns the configured priority order.
func (n *Normalizer) Patterns() []string {
	out := make([]string, len(n.patterns))
	copy(out, n.patterns)
	return out
}

// Normalize parses a raw date cell.
//
// The empty cell and the literal NULL token (any case) mean the
// assignment has no defined end and yield the ongoing sentinel. Every
// other value is tried against the configured formats in priority
// order. Parsing is strict: re-formatting the parsed day with the
// candidate layout must reproduce the input exactly, which rejects
// partially consumed values, unpadded spellings like "3/4/2023", and
// overflowed fields like a day of 34. Two-digit years resolve with the
// POSIX pivot: 00-68 land in the 2000s, 69-99 in the 1900s.
//
// When no format matches, the error is an *UnparseableDateError
// carrying the offending cell.
func (n *Normalizer) Normalize(raw string) (End, error) {
	if raw == "" || strings.EqualFold(raw, nullToken) {
		return Ongoing(), nil
	}
	for _, layout := range n.layouts {
		t, err := parseStrict(layout, raw)
		if err != nil {
			continue
		}
		return Fixed(DateOf(t)), nil
	}
	return End{}, &UnparseableDateError{Raw: raw}
}

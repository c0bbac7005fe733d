package report

import dedupe "github.com/okian/tandem/internal/domain/dedupe"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithDelimiter sets the field delimiter. Only sensible single runes
// are accepted; anything else keeps the comma default.
func WithDelimiter(d rune) Option {
	return func(l *Loader) {
		if d != 0 && d != '\n' && d != '\r' {
			l.delimiter = d
		}
	}
}

// WithDeduper enables duplicate-row filtering through the given
// deduper. Exact duplicates (same employee, project, and dates) are
// dropped and counted instead of loaded twice.
func WithDeduper(d dedupe.Deduper) Option {
	return func(l *Loader) {
		l.deduper = d
	}
}

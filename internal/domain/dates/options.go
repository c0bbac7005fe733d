package dates

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithPatterns replaces the candidate format list as given. Order is
// priority order; the first matching format wins. NewNormalizer rejects
// an empty list.
func WithPatterns(patterns []string) Option {
	return func(n *Normalizer) {
		n.patterns = append([]string(nil), patterns...)
	}
}

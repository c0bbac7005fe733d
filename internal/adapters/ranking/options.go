package ranking

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSeed pins the priority source so tests get a reproducible tree
// shape. Ranking order never depends on the seed, only balance does.
func WithSeed(seed int64) Option {
	return func(s *TreapStore) {
		s.seed = seed
	}
}

package overlap

import "time"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithEvaluationTime pins the instant ongoing assignments resolve to.
// Zero times are ignored.
func WithEvaluationTime(t time.Time) Option {
	return func(e *Engine) {
		if !t.IsZero() {
			e.eval = t
		}
	}
}

// Package ranking defines the pair-total store interface and errors.
package ranking

import (
	"context"

	types "github.com/okian/tandem/internal/domain/types"
)

// Store accumulates per-project overlap days into employee-pair totals
// and serves ranked reads over them. A Store belongs to exactly one
// computation; nothing is shared across invocations.
type Store interface {
	// Accumulate adds one shared project's overlap days to the pair's
	// running total. Days must be positive; the engine filters
	// non-overlapping intervals before they get here.
	Accumulate(ctx context.Context, pair types.Pair, projectID string, days int64) error

	// Best returns the top-ranked entry: greatest total, smallest pair
	// on ties. Returns ErrEmpty when nothing was accumulated.
	Best(ctx context.Context) (types.Entry, error)

	// Rank returns the ranked entry for one pair.
	// Returns ErrNotFound if the pair has no accumulated overlap.
	Rank(ctx context.Context, pair types.Pair) (types.Entry, error)

	// TopN returns the top-n entries ordered by total desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of pairs tracked.
	Count(ctx context.Context) int
}

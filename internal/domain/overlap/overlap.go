// Package overlap computes the calendar days pairs of employees spent
// together on shared projects.
package overlap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/tandem/internal/domain/dates"
	"github.com/okian/tandem/internal/domain/model"
	"github.com/okian/tandem/internal/domain/types"
)

const dayLength = 24 * time.Hour

// Accumulator receives per-project overlaps and answers which pair
// leads on total days. Implementations order equal totals by pair
// identity so the leader is unambiguous.
type Accumulator interface {
	// Accumulate adds days spent together on projectID to the pair's
	// running total.
	Accumulate(ctx context.Context, pair types.Pair, projectID string, days int64) error
	// Best returns the entry with the greatest total, smallest pair
	// on ties.
	Best(ctx context.Context) (types.Entry, error)
	// Count reports how many distinct pairs have been accumulated.
	Count(ctx context.Context) int
}

// Engine pairs assignment records project by project. Ongoing
// assignments run through the engine's evaluation day, so results are
// only stable for a pinned evaluation time.
type Engine struct {
	eval time.Time
}

// NewEngine creates an engine with configuration options. The
// evaluation time defaults to the current instant.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		eval: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// span is an assignment resolved to concrete instants. Both ends are
// UTC midnights, so durations between them are exact multiples of a
// day.
type span struct {
	emp   string
	start time.Time
	end   time.Time
}

// byProject buckets records into resolved spans keyed by project,
// with keys in first-seen order.
func (e *Engine) byProject(records []model.AssignmentRecord) (map[string][]span, []string) {
	day := dates.DateOf(e.eval).Time()
	buckets := make(map[string][]span)
	order := make([]string, 0)
	for _, r := range records {
		if _, ok := buckets[r.ProjectID]; !ok {
			order = append(order, r.ProjectID)
		}
		buckets[r.ProjectID] = append(buckets[r.ProjectID], span{
			emp:   r.EmpID,
			start: r.From.Time(),
			end:   r.To.Resolve(day),
		})
	}
	return buckets, order
}

// days reports the length of the intersection of two spans. Zero
// means the spans never coexist; a span whose end precedes its start
// intersects nothing.
func days(a, b span) int64 {
	start := a.start
	if b.start.After(start) {
		start = b.start
	}
	end := a.end
	if b.end.Before(end) {
		end = b.end
	}
	if !start.Before(end) {
		return 0
	}
	return int64(end.Sub(start) / dayLength)
}

// AllOverlaps lists every positive per-project overlap between
// distinct employees, one row per record pairing. Rows are ordered by
// employee pair, then project; repeated stints of the same pair on
// the same project stay separate rows.
func (e *Engine) AllOverlaps(records []model.AssignmentRecord) []model.PairOverlap {
	buckets, order := e.byProject(records)
	out := make([]model.PairOverlap, 0)
	for _, projectID := range order {
		spans := buckets[projectID]
		for i := 0; i < len(spans); i++ {
			for j := i + 1; j < len(spans); j++ {
				pair, ok := types.NewPair(spans[i].emp, spans[j].emp)
				if !ok {
					// Same employee on two stints, nothing to pair.
					continue
				}
				d := days(spans[i], spans[j])
				if d <= 0 {
					continue
				}
				out = append(out, model.PairOverlap{
					EmployeeA: pair.A,
					EmployeeB: pair.B,
					ProjectID: projectID,
					Days:      d,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := types.CompareIDs(out[i].EmployeeA, out[j].EmployeeA); c != 0 {
			return c < 0
		}
		if c := types.CompareIDs(out[i].EmployeeB, out[j].EmployeeB); c != 0 {
			return c < 0
		}
		return types.CompareIDs(out[i].ProjectID, out[j].ProjectID) < 0
	})
	return out
}

// Feed accumulates every positive per-project overlap into acc.
func (e *Engine) Feed(ctx context.Context, records []model.AssignmentRecord, acc Accumulator) error {
	if acc == nil {
		return ErrNilAccumulator
	}
	buckets, order := e.byProject(records)
	for _, projectID := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		spans := buckets[projectID]
		for i := 0; i < len(spans); i++ {
			for j := i + 1; j < len(spans); j++ {
				pair, ok := types.NewPair(spans[i].emp, spans[j].emp)
				if !ok {
					continue
				}
				d := days(spans[i], spans[j])
				if d <= 0 {
					continue
				}
				if err := acc.Accumulate(ctx, pair, projectID, d); err != nil {
					return fmt.Errorf("accumulate %s/%s on %s: %w", pair.A, pair.B, projectID, err)
				}
			}
		}
	}
	return nil
}

// TopPair feeds acc and returns the pair with the greatest summed
// overlap across all projects. Returns ErrNoOverlap when no two
// employees ever coexisted on a project.
func (e *Engine) TopPair(ctx context.Context, records []model.AssignmentRecord, acc Accumulator) (model.TopPair, error) {
	if err := e.Feed(ctx, records, acc); err != nil {
		return model.TopPair{}, err
	}
	if acc.Count(ctx) == 0 {
		return model.TopPair{}, ErrNoOverlap
	}
	best, err := acc.Best(ctx)
	if err != nil {
		return model.TopPair{}, fmt.Errorf("query best pair: %w", err)
	}
	return model.TopPair{
		EmployeeA: best.EmployeeA,
		EmployeeB: best.EmployeeB,
		TotalDays: best.TotalDays,
		Projects:  best.Projects,
	}, nil
}

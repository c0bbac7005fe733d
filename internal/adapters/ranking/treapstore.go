package ranking

import (
	"context"
	"math/rand"
	"sync"
	"time"

	types "github.com/okian/tandem/internal/domain/types"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: total days DESC, then pair ASC under the identifier order.
// The BST comparator treats "less" as "ranks earlier", so an in-order
// traversal walks the ranking from best to worst. Heap priorities are
// drawn from a seeded random source, which keeps the tree balanced in
// expectation regardless of accumulation order.

// treap node
type node struct {
	pair  types.Pair
	total int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aTotal, aPair) ranks earlier than
// (bTotal, bPair): more accumulated days first, smaller pair on ties.
func less(aTotal int64, aPair types.Pair, bTotal int64, bPair types.Pair) bool {
	if aTotal != bTotal {
		return aTotal > bTotal
	}
	return types.ComparePairs(aPair, bPair) < 0
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, pair types.Pair, total int64, prio uint64) *node {
	if n == nil {
		return &node{pair: pair, total: total, prio: prio, size: 1}
	}
	if less(total, pair, n.total, n.pair) {
		n.left = insert(n.left, pair, total, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, pair, total, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, pair types.Pair, total int64) *node {
	if n == nil {
		return nil
	}
	if total == n.total && n.pair == pair {
		// Merge children by rotating the higher priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, pair, total)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, pair, total)
		}
	} else if less(total, pair, n.total, n.pair) {
		n.left = deleteNode(n.left, pair, total)
	} else {
		n.right = deleteNode(n.right, pair, total)
	}
	fix(n)
	return n
}

// record holds the per-pair accumulation state outside the tree.
type record struct {
	total    int64
	projects map[string]struct{} // distinct projects contributing overlap
}

// TreapStore is the in-memory Store used for one computation.
type TreapStore struct {
	mu    sync.RWMutex
	root  *node
	byKey map[string]*record
	rng   *rand.Rand
	seed  int64
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byKey: make(map[string]*record),
		seed:  time.Now().UnixNano(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.rng = rand.New(rand.NewSource(s.seed)) //nolint:gosec // priorities need balance, not secrecy

	return s
}

// Accumulate implements Store.Accumulate in O(log n) expected time.
// Totals only grow, so the pair is deleted at its old total and
// reinserted at the new one.
func (s *TreapStore) Accumulate(_ context.Context, pair types.Pair, projectID string, days int64) error {
	if pair.A == "" || pair.B == "" {
		return ErrInvalidPair
	}
	if days <= 0 {
		return ErrNonPositiveDays
	}

	key := pair.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byKey[key]
	if ok {
		s.root = deleteNode(s.root, pair, rec.total)
		rec.total += days
	} else {
		rec = &record{total: days, projects: make(map[string]struct{})}
		s.byKey[key] = rec
	}
	rec.projects[projectID] = struct{}{}
	s.root = insert(s.root, pair, rec.total, s.rng.Uint64())
	return nil
}

// Best implements Store.Best: the leftmost node ranks first by
// construction, so the documented tie-break (smallest pair among equal
// totals) needs no extra work.
func (s *TreapStore) Best(_ context.Context) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.root
	if n == nil {
		return types.Entry{}, ErrEmpty
	}
	for n.left != nil {
		n = n.left
	}
	return s.entryFor(n.pair, 1), nil
}

// Rank implements Store.Rank. The in-order walk is already the ranking
// order, so ranks with ties come from one pass over the entries.
func (s *TreapStore) Rank(_ context.Context, pair types.Pair) (types.Entry, error) {
	key := pair.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byKey[key]; !ok {
		return types.Entry{}, ErrNotFound
	}

	all := make([]types.Entry, 0, len(s.byKey))
	s.collect(s.root, len(s.byKey), &all)
	assignRanksWithTies(all)

	for _, e := range all {
		if e.EmployeeA == pair.A && e.EmployeeB == pair.B {
			return e, nil
		}
	}
	return types.Entry{}, ErrNotFound
}

// TopN implements Store.TopN.
func (s *TreapStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Entry, 0, n)
	s.collect(s.root, n, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

// collect appends up to limit entries in rank order. Ranks are filled
// in afterwards by assignRanksWithTies.
func (s *TreapStore) collect(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	s.collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, s.entryFor(n.pair, 0))
	}
	if len(*out) < limit {
		s.collect(n.right, limit, out)
	}
}

// entryFor builds the external entry for a pair. Callers hold the lock.
func (s *TreapStore) entryFor(pair types.Pair, rank int) types.Entry {
	rec := s.byKey[pair.Key()]
	return types.Entry{
		Rank:      rank,
		EmployeeA: pair.A,
		EmployeeB: pair.B,
		TotalDays: rec.total,
		Projects:  len(rec.projects),
	}
}

// assignRanksWithTies assigns dense ranks: pairs with equal totals
// share a rank and the next distinct total takes the next rank.
func assignRanksWithTies(entries []types.Entry) {
	if len(entries) == 0 {
		return
	}

	rank := 1
	entries[0].Rank = rank
	for i := 1; i < len(entries); i++ {
		if entries[i].TotalDays != entries[i-1].TotalDays {
			rank++
		}
		entries[i].Rank = rank
	}
}

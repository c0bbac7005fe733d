// Package dedupe provides duplicate detection for report rows.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the seen-set when no capacity is configured.
const defaultMaxSize = 50000

// Deduper records seen record identities so exact duplicate rows can be
// dropped during a load.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records
	// it if not. Returns true if key was already seen, false if it was
	// newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Size returns the current number of recorded identities.
	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a ring of
// insertion slots. In bounded mode (maxSize > 0) the ring overwrites
// the oldest identity once full; with maxSize <= 0 the set grows
// without bound.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string // insertion order, reused circularly in bounded mode
	next    int      // ring write position
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}

	return d
}

// SeenAndRecord atomically checks whether key was seen and records it
// if not. Keys must be non-empty; the empty string marks free ring
// slots.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 {
		if evicted := d.ring[d.next]; evicted != "" {
			delete(d.seen, evicted)
			d.size.Add(-1)
		}
		d.ring[d.next] = key
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the current number of recorded identities.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

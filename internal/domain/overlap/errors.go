package overlap

import "errors"

// Sentinel kinds for pairing errors.
var (
	ErrNoOverlap      = errors.New("no overlapping pair")
	ErrNilAccumulator = errors.New("nil accumulator")
)

package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound        = errors.New("pair not found")
	ErrEmpty           = errors.New("no pairs accumulated")
	ErrInvalidLimit    = errors.New("invalid ranking limit")
	ErrInvalidPair     = errors.New("invalid pair")
	ErrNonPositiveDays = errors.New("overlap days must be positive")
)

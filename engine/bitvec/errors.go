package bitvec

import "errors"

var (
	// ErrRange indicates an empty, inverted or out-of-length bit range.
	ErrRange = errors.New("bitvec: invalid range")

	// ErrNotFound indicates that no bit in the range has the requested value.
	ErrNotFound = errors.New("bitvec: no matching bit")

	// ErrGrowFail indicates that growth would pass the vector's length limit.
	ErrGrowFail = errors.New("bitvec: grow failed")
)

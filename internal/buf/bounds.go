package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false when the
// result would overflow int or either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CeilDiv returns ceil(n/d) for n >= 0 and d > 0.
func CeilDiv(n, d int) int {
	return (n + d - 1) / d
}

// RoundUp rounds n up to the next multiple of step. A step <= 0 returns n unchanged.
func RoundUp(n, step int) int {
	if step <= 0 {
		return n
	}
	return CeilDiv(n, step) * step
}

// CheckRange validates that the span [off, off+n) fits in a region of size total
// and returns its exclusive end.
//
//	end, err := buf.CheckRange(len(data), off, n)
//	if err != nil {
//	    return fmt.Errorf("arena: %w", err)
//	}
func CheckRange(total, off, n int) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length: %d", n)
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + len=%d", off, n)
	}
	if end > total {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, total)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Zero clears b.
func Zero(b []byte) {
	clear(b)
}

package arena

import "errors"

var (
	// ErrBadBlockSize indicates a block size that is not a positive multiple of 8,
	// or a non-positive block count.
	ErrBadBlockSize = errors.New("arena: block size must be a positive multiple of 8 and block count > 0")

	// ErrZeroLength indicates an allocation or free of zero bytes.
	ErrZeroLength = errors.New("arena: zero-length request")

	// ErrGrowFail indicates that growing the arena failed or would exceed MaxBytes.
	ErrGrowFail = errors.New("arena: grow failed")

	// ErrBadOffset indicates an offset or range outside the data region.
	ErrBadOffset = errors.New("arena: offset out of range")

	// ErrMisaligned indicates an offset that does not start a block.
	ErrMisaligned = errors.New("arena: offset not block-aligned")

	// ErrNotAllocated indicates a range containing at least one free block.
	ErrNotAllocated = errors.New("arena: range not allocated")

	// ErrReleased indicates use of an arena after Release.
	ErrReleased = errors.New("arena: released")
)

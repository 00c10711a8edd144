// Package arena provides a bitmap-tracked region allocator.
//
// # Overview
//
// An Arena is one contiguous, owned byte buffer divided into fixed-size blocks.
// Allocation state lives in a bitmap inside the same buffer, so the whole arena
// can be moved by a single reallocation:
//
//	+--------------------+----------------------+----------------------------+
//	| header (12 bytes)  | bitmap (blocks/8 B)  | data (blocks * block size) |
//	+--------------------+----------------------+----------------------------+
//
// The header stores the total length, the block size and the block count as
// little-endian uint32 values. Bit i of the bitmap (LSB first) is set while
// block i is allocated.
//
// # Offsets
//
// Alloc returns an Offset, a byte position relative to the start of the data
// region. Offsets stay valid across growth, while slices returned by Bytes do
// not: re-resolve an Offset after any call that may grow the arena.
//
// # Allocation
//
// Alloc(n) takes the first run of ceil(n/BlockSize) free blocks. When no run
// is large enough the arena grows by GrowBlocks (or more, if the request needs
// it), copying the bitmap and the data region into new backing storage, and
// retries. Growth is all-or-nothing: a failed grow leaves the arena untouched.
//
// Free(off, n) must be called with the length passed to Alloc. Misaligned,
// out-of-range or not-allocated ranges are rejected before any bit changes.
//
// # Thread Safety
//
// Arena instances are not thread-safe. Callers must serialize access.
package arena

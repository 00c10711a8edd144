package arena

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hujiyo/Mhuixs-sub001/internal/buf"
	"github.com/hujiyo/Mhuixs-sub001/internal/logger"
	"github.com/hujiyo/Mhuixs-sub001/internal/mmap"
)

const (
	// HeaderSize is the size of the fixed arena header.
	HeaderSize = 12

	// DefaultBlockSize is the default block size in bytes.
	DefaultBlockSize = 64

	// DefaultBlocks is the default initial block count.
	DefaultBlocks = 3200

	// DefaultGrowBlocks is the default number of blocks added per grow.
	DefaultGrowBlocks = 1024

	// header field positions
	hdrTotalLen  = 0
	hdrBlockSize = 4
	hdrBlocks    = 8
)

// Offset is a byte position relative to the start of the data region.
type Offset uint32

// Options configures a new Arena. Zero fields take the package defaults.
type Options struct {
	BlockSize  int  // bytes per block, a positive multiple of 8
	Blocks     int  // initial block count
	GrowBlocks int  // blocks added when no free run is large enough
	MaxBytes   int  // cap on the total buffer size, 0 = unlimited
	Mmap       bool // back the buffer with an anonymous mapping when supported

	Logger *slog.Logger // nil uses logger.L
}

// DefaultOptions returns the default arena configuration.
func DefaultOptions() Options {
	return Options{
		BlockSize:  DefaultBlockSize,
		Blocks:     DefaultBlocks,
		GrowBlocks: DefaultGrowBlocks,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BlockSize == 0 {
		o.BlockSize = d.BlockSize
	}
	if o.Blocks == 0 {
		o.Blocks = d.Blocks
	}
	if o.GrowBlocks <= 0 {
		o.GrowBlocks = d.GrowBlocks
	}
	return o
}

// Arena is a block allocator over a single relocatable buffer.
type Arena struct {
	opts Options
	log  *slog.Logger

	buf     []byte
	release func() error

	blockSize int
	blocks    int
	used      int // allocated blocks

	stats counters
}

// counters holds cumulative call statistics.
type counters struct {
	allocCalls int
	freeCalls  int
	growCalls  int
	growBlocks int
}

// New creates an arena with opts.Blocks blocks of opts.BlockSize bytes.
func New(opts Options) (*Arena, error) {
	opts = opts.withDefaults()
	if opts.BlockSize <= 0 || opts.BlockSize%8 != 0 || opts.Blocks <= 0 {
		return nil, fmt.Errorf("%w: block size %d, blocks %d", ErrBadBlockSize, opts.BlockSize, opts.Blocks)
	}

	a := &Arena{
		opts:      opts,
		log:       logger.Or(opts.Logger),
		blockSize: opts.BlockSize,
	}
	b, release, err := a.backing(opts.Blocks)
	if err != nil {
		return nil, err
	}
	a.install(b, release, opts.Blocks)
	return a, nil
}

// layoutSize returns the buffer size needed for the given block count.
func (a *Arena) layoutSize(blocks int) (int, bool) {
	data, ok := buf.MulOverflowSafe(blocks, a.blockSize)
	if !ok || uint64(data) > math.MaxUint32 {
		return 0, false
	}
	total, ok := buf.AddOverflowSafe(HeaderSize+bitmapLen(blocks), data)
	if !ok || uint64(total) > math.MaxUint32 {
		return 0, false
	}
	return total, true
}

// backing obtains zeroed storage for a layout of the given block count.
func (a *Arena) backing(blocks int) ([]byte, func() error, error) {
	total, ok := a.layoutSize(blocks)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d blocks of %d bytes overflows", ErrGrowFail, blocks, a.blockSize)
	}
	if a.opts.MaxBytes > 0 && total > a.opts.MaxBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrGrowFail, total, a.opts.MaxBytes)
	}
	if a.opts.Mmap && mmap.Supported() {
		b, release, err := mmap.Anon(total)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrGrowFail, err)
		}
		return b, release, nil
	}
	return make([]byte, total), nil, nil
}

// install adopts b as the arena buffer and rewrites the header.
func (a *Arena) install(b []byte, release func() error, blocks int) {
	a.buf = b
	a.release = release
	a.blocks = blocks
	buf.PutU32LE(a.buf[hdrTotalLen:], uint32(len(b)))
	buf.PutU32LE(a.buf[hdrBlockSize:], uint32(a.blockSize))
	buf.PutU32LE(a.buf[hdrBlocks:], uint32(blocks))
}

func bitmapLen(blocks int) int {
	return buf.CeilDiv(blocks, 8)
}

func (a *Arena) bitmap() []byte {
	return a.buf[HeaderSize : HeaderSize+bitmapLen(a.blocks)]
}

func (a *Arena) dataStart() int {
	return HeaderSize + bitmapLen(a.blocks)
}

func (a *Arena) bit(i int) bool {
	return a.buf[HeaderSize+i>>3]&(1<<(i&7)) != 0
}

func (a *Arena) mark(first, n int, on bool) {
	bm := a.bitmap()
	for i := first; i < first+n; i++ {
		if on {
			bm[i>>3] |= 1 << (i & 7)
		} else {
			bm[i>>3] &^= 1 << (i & 7)
		}
	}
}

// findRun returns the first block index starting n consecutive free blocks.
func (a *Arena) findRun(n int) (int, bool) {
	bm := a.bitmap()
	run, start := 0, 0
	for i := 0; i < a.blocks; {
		if run == 0 && i&7 == 0 && bm[i>>3] == 0xFF {
			i += 8
			continue
		}
		if bm[i>>3]&(1<<(i&7)) != 0 {
			run = 0
			i++
			continue
		}
		if run == 0 {
			start = i
		}
		run++
		if run == n {
			return start, true
		}
		i++
	}
	return 0, false
}

// trailingFree counts free blocks at the end of the data region.
func (a *Arena) trailingFree() int {
	n := 0
	for i := a.blocks - 1; i >= 0 && !a.bit(i); i-- {
		n++
	}
	return n
}

// Alloc reserves n bytes and returns the offset of the first block.
func (a *Arena) Alloc(n int) (Offset, error) {
	if a.buf == nil {
		return 0, ErrReleased
	}
	if n <= 0 {
		return 0, ErrZeroLength
	}
	a.stats.allocCalls++

	need := buf.CeilDiv(n, a.blockSize)
	first, ok := a.findRun(need)
	if !ok {
		add := a.opts.GrowBlocks
		for a.trailingFree()+add < need {
			add += a.opts.GrowBlocks
		}
		if err := a.Grow(add); err != nil {
			return 0, err
		}
		if first, ok = a.findRun(need); !ok {
			return 0, fmt.Errorf("%w: no run of %d blocks after grow", ErrGrowFail, need)
		}
	}

	a.mark(first, need, true)
	a.used += need
	return Offset(first * a.blockSize), nil
}

// Grow adds n blocks to the arena, relocating the bitmap and data region.
func (a *Arena) Grow(n int) error {
	if a.buf == nil {
		return ErrReleased
	}
	if n <= 0 {
		return nil
	}
	blocks, ok := buf.AddOverflowSafe(a.blocks, n)
	if !ok {
		return fmt.Errorf("%w: block count overflow", ErrGrowFail)
	}
	nb, release, err := a.backing(blocks)
	if err != nil {
		return err
	}

	oldBitmap := a.bitmap()
	oldData := a.buf[a.dataStart():]
	newStart := HeaderSize + bitmapLen(blocks)
	copy(nb[HeaderSize:newStart], oldBitmap)
	copy(nb[newStart:], oldData)

	from := a.blocks
	if a.release != nil {
		if err := a.release(); err != nil {
			a.log.Warn("arena: release old backing", "error", err)
		}
	}
	a.install(nb, release, blocks)
	a.stats.growCalls++
	a.stats.growBlocks += n
	a.log.Debug("arena grew", "from", from, "to", blocks, "bytes", len(nb))
	return nil
}

// Free releases n bytes starting at off. n must match the length given to Alloc.
func (a *Arena) Free(off Offset, n int) error {
	if a.buf == nil {
		return ErrReleased
	}
	first, count, err := a.span(off, n)
	if err != nil {
		return err
	}
	for i := first; i < first+count; i++ {
		if !a.bit(i) {
			return fmt.Errorf("%w: block %d of [%d,%d)", ErrNotAllocated, i, first, first+count)
		}
	}
	a.mark(first, count, false)
	a.used -= count
	a.stats.freeCalls++
	return nil
}

// span validates [off, off+n) and returns its block range.
func (a *Arena) span(off Offset, n int) (first, count int, err error) {
	if n <= 0 {
		return 0, 0, ErrZeroLength
	}
	if int(off)%a.blockSize != 0 {
		return 0, 0, fmt.Errorf("%w: %d (block size %d)", ErrMisaligned, off, a.blockSize)
	}
	first = int(off) / a.blockSize
	count = buf.CeilDiv(n, a.blockSize)
	if _, err := buf.CheckRange(a.blocks, first, count); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrBadOffset, err)
	}
	return first, count, nil
}

// Check reports why off is not the start of an allocated block, or nil.
func (a *Arena) Check(off Offset) error {
	if a.buf == nil {
		return ErrReleased
	}
	first, _, err := a.span(off, 1)
	if err != nil {
		return err
	}
	if !a.bit(first) {
		return fmt.Errorf("%w: block %d", ErrNotAllocated, first)
	}
	return nil
}

// IsAllocated reports whether the block at off is allocated.
func (a *Arena) IsAllocated(off Offset) bool {
	return a.Check(off) == nil
}

// Address resolves off to an absolute position in the arena buffer.
func (a *Arena) Address(off Offset) int {
	return a.dataStart() + int(off)
}

// Bytes returns a view of n bytes at off. The view is invalidated by growth.
func (a *Arena) Bytes(off Offset, n int) ([]byte, error) {
	if err := a.Check(off); err != nil {
		return nil, err
	}
	b, ok := buf.Slice(a.buf, a.Address(off), n)
	if !ok || int(off)+n > a.blocks*a.blockSize {
		return nil, fmt.Errorf("%w: [%d,+%d)", ErrBadOffset, off, n)
	}
	return b, nil
}

// Header returns the values stored in the arena header.
func (a *Arena) Header() (totalLen, blockSize, blocks uint32) {
	if a.buf == nil {
		return 0, 0, 0
	}
	return buf.U32LE(a.buf[hdrTotalLen:]), buf.U32LE(a.buf[hdrBlockSize:]), buf.U32LE(a.buf[hdrBlocks:])
}

// BlockSize returns the block size in bytes.
func (a *Arena) BlockSize() int { return a.blockSize }

// Blocks returns the current block count.
func (a *Arena) Blocks() int { return a.blocks }

// UsedBlocks returns the number of allocated blocks.
func (a *Arena) UsedBlocks() int { return a.used }

// Reset frees every block and zeroes the data region without shrinking.
func (a *Arena) Reset() {
	if a.buf == nil {
		return
	}
	buf.Zero(a.buf[HeaderSize:])
	a.used = 0
}

// Clone returns an independent copy of the arena with the same options.
func (a *Arena) Clone() (*Arena, error) {
	if a.buf == nil {
		return nil, ErrReleased
	}
	c := &Arena{opts: a.opts, log: a.log, blockSize: a.blockSize}
	b, release, err := c.backing(a.blocks)
	if err != nil {
		return nil, err
	}
	copy(b, a.buf)
	c.install(b, release, a.blocks)
	c.used = a.used
	return c, nil
}

// Release drops the backing storage. The arena is unusable afterwards.
func (a *Arena) Release() error {
	if a.buf == nil {
		return nil
	}
	var err error
	if a.release != nil {
		err = a.release()
	}
	a.buf, a.release = nil, nil
	a.blocks, a.used = 0, 0
	return err
}

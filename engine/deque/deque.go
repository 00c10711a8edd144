// Package deque provides a block-chained double-ended queue with index access.
//
// A Deque is a doubly linked chain of fixed-capacity blocks. Each block keeps
// its live elements in data[start:start+size]. New blocks start centered so
// they can grow toward either end. Pushing onto an end whose block has no room
// on that side links a fresh centered block; inserting into the middle of a
// block recenters it, or splits it in two when it is full, and then shifts the
// smaller side. Blocks that drop under MinBlockSize are merged with a
// neighbour when the two fit in one block.
package deque

import (
	"fmt"
	"iter"
)

const (
	// DefaultBlockSize is the default per-block capacity.
	DefaultBlockSize = 2048

	// DefaultMinBlockSize is the size under which a block is merged with a neighbour.
	DefaultMinBlockSize = 521

	minCapacity = 4
)

// Options configures a Deque. Zero fields take the package defaults.
type Options struct {
	BlockSize    int // elements per block, at least 4
	MinBlockSize int // merge threshold, less than BlockSize
}

// DefaultOptions returns the default deque configuration.
func DefaultOptions() Options {
	return Options{BlockSize: DefaultBlockSize, MinBlockSize: DefaultMinBlockSize}
}

type block[T any] struct {
	data        []T
	start, size int
	prev, next  *block[T]
}

func (b *block[T]) leftSpace() int  { return b.start }
func (b *block[T]) rightSpace() int { return len(b.data) - b.start - b.size }
func (b *block[T]) at(i int) *T     { return &b.data[b.start+i] }

// Deque is a double-ended queue of T. The zero value is not usable; call New.
type Deque[T any] struct {
	head, tail *block[T]
	n          int
	nblocks    int

	blockSize int
	minSize   int
}

// New returns an empty deque.
func New[T any](opts Options) *Deque[T] {
	d := DefaultOptions()
	if opts.BlockSize == 0 {
		opts.BlockSize = d.BlockSize
	}
	if opts.BlockSize < minCapacity {
		opts.BlockSize = minCapacity
	}
	if opts.MinBlockSize == 0 {
		opts.MinBlockSize = d.MinBlockSize
	}
	if opts.MinBlockSize < 0 || opts.MinBlockSize >= opts.BlockSize {
		opts.MinBlockSize = opts.BlockSize / 4
	}
	return &Deque[T]{blockSize: opts.BlockSize, minSize: opts.MinBlockSize}
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int { return d.n }

// Blocks returns the number of blocks in the chain.
func (d *Deque[T]) Blocks() int { return d.nblocks }

func (d *Deque[T]) newBlock() *block[T] {
	d.nblocks++
	return &block[T]{data: make([]T, d.blockSize), start: d.blockSize / 2}
}

// linkAfter inserts nb after b, or at the head when b is nil.
func (d *Deque[T]) linkAfter(b, nb *block[T]) {
	if b == nil {
		nb.next = d.head
		if d.head != nil {
			d.head.prev = nb
		}
		d.head = nb
		if d.tail == nil {
			d.tail = nb
		}
		return
	}
	nb.prev = b
	nb.next = b.next
	if b.next != nil {
		b.next.prev = nb
	}
	b.next = nb
	if d.tail == b {
		d.tail = nb
	}
}

func (d *Deque[T]) unlink(b *block[T]) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		d.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	} else {
		d.tail = b.prev
	}
	b.prev, b.next = nil, nil
	d.nblocks--
}

// recenter moves the live range of b to the middle of its array.
func (d *Deque[T]) recenter(b *block[T]) {
	ns := (len(b.data) - b.size) / 2
	if ns == b.start {
		return
	}
	copy(b.data[ns:ns+b.size], b.data[b.start:b.start+b.size])
	b.start = ns
	clear(b.data[:ns])
	clear(b.data[ns+b.size:])
}

// split moves the upper half of b into a new block linked after it and
// recenters both halves.
func (d *Deque[T]) split(b *block[T]) {
	mid := b.size / 2
	nb := d.newBlock()
	nb.size = b.size - mid
	nb.start = (len(nb.data) - nb.size) / 2
	copy(nb.data[nb.start:], b.data[b.start+mid:b.start+b.size])
	clear(b.data[b.start+mid : b.start+b.size])
	b.size = mid
	d.linkAfter(b, nb)
	d.recenter(b)
}

// merge folds b.next into b when both fit in one block.
func (d *Deque[T]) merge(b *block[T]) {
	nxt := b.next
	if nxt == nil || b.size+nxt.size > len(b.data) {
		return
	}
	copy(b.data[0:], b.data[b.start:b.start+b.size])
	copy(b.data[b.size:], nxt.data[nxt.start:nxt.start+nxt.size])
	b.start = 0
	b.size += nxt.size
	clear(b.data[b.size:])
	d.unlink(nxt)
	d.recenter(b)
}

// rebalance drops an empty block or merges an undersized one with a neighbour.
func (d *Deque[T]) rebalance(b *block[T]) {
	switch {
	case b.size == 0:
		d.unlink(b)
	case b.size < d.minSize && b.next != nil:
		d.merge(b)
	case b.size < d.minSize && b.prev != nil:
		d.merge(b.prev)
	}
}

// PushFront adds v before the first element.
func (d *Deque[T]) PushFront(v T) {
	if d.head == nil || d.head.leftSpace() == 0 {
		d.linkAfter(nil, d.newBlock())
	}
	b := d.head
	b.start--
	b.data[b.start] = v
	b.size++
	d.n++
}

// PushBack adds v after the last element.
func (d *Deque[T]) PushBack(v T) {
	if d.tail == nil || d.tail.rightSpace() == 0 {
		d.linkAfter(d.tail, d.newBlock())
	}
	b := d.tail
	b.data[b.start+b.size] = v
	b.size++
	d.n++
}

// PopFront removes and returns the first element.
func (d *Deque[T]) PopFront() (T, error) {
	var zero T
	if d.n == 0 {
		return zero, ErrEmpty
	}
	b := d.head
	v := *b.at(0)
	*b.at(0) = zero
	b.start++
	b.size--
	d.n--
	if b.size == 0 {
		d.unlink(b)
	} else if b.size < d.minSize && b.next != nil {
		d.merge(b)
	}
	return v, nil
}

// PopBack removes and returns the last element.
func (d *Deque[T]) PopBack() (T, error) {
	var zero T
	if d.n == 0 {
		return zero, ErrEmpty
	}
	b := d.tail
	v := *b.at(b.size - 1)
	*b.at(b.size - 1) = zero
	b.size--
	d.n--
	if b.size == 0 {
		d.unlink(b)
	} else if b.size < d.minSize && b.prev != nil {
		d.merge(b.prev)
	}
	return v, nil
}

// Front returns the first element without removing it.
func (d *Deque[T]) Front() (T, error) {
	if d.n == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return *d.head.at(0), nil
}

// Back returns the last element without removing it.
func (d *Deque[T]) Back() (T, error) {
	if d.n == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return *d.tail.at(d.tail.size - 1), nil
}

// locate returns the block holding element i and i's position inside it,
// walking from whichever end is nearer.
func (d *Deque[T]) locate(i int) (*block[T], int) {
	if i < d.n/2 {
		b := d.head
		for i >= b.size {
			i -= b.size
			b = b.next
		}
		return b, i
	}
	b := d.tail
	rest := d.n - 1 - i // elements after i
	for rest >= b.size {
		rest -= b.size
		b = b.prev
	}
	return b, b.size - 1 - rest
}

func (d *Deque[T]) checkIndex(i, limit int) error {
	if i < 0 || i >= limit {
		return fmt.Errorf("%w: %d (len %d)", ErrIndex, i, d.n)
	}
	return nil
}

// Get returns element i.
func (d *Deque[T]) Get(i int) (T, error) {
	if err := d.checkIndex(i, d.n); err != nil {
		var zero T
		return zero, err
	}
	b, off := d.locate(i)
	return *b.at(off), nil
}

// Set replaces element i.
func (d *Deque[T]) Set(i int, v T) error {
	if err := d.checkIndex(i, d.n); err != nil {
		return err
	}
	b, off := d.locate(i)
	*b.at(off) = v
	return nil
}

// Swap exchanges elements i and j.
func (d *Deque[T]) Swap(i, j int) error {
	if err := d.checkIndex(i, d.n); err != nil {
		return err
	}
	if err := d.checkIndex(j, d.n); err != nil {
		return err
	}
	bi, oi := d.locate(i)
	bj, oj := d.locate(j)
	*bi.at(oi), *bj.at(oj) = *bj.at(oj), *bi.at(oi)
	return nil
}

// Insert places v at index i, shifting later elements up. i may equal Len.
func (d *Deque[T]) Insert(i int, v T) error {
	if err := d.checkIndex(i, d.n+1); err != nil {
		return err
	}
	switch i {
	case 0:
		d.PushFront(v)
		return nil
	case d.n:
		d.PushBack(v)
		return nil
	}

	b, off := d.locate(i)
	if b.size == len(b.data) {
		d.split(b)
		b, off = d.locate(i)
	}
	left := off < b.size-off
	if (left && b.leftSpace() == 0) || (!left && b.rightSpace() == 0) {
		d.recenter(b)
		left = left && b.leftSpace() > 0 || b.rightSpace() == 0
	}

	if left {
		b.start--
		copy(b.data[b.start:b.start+off], b.data[b.start+1:b.start+1+off])
	} else {
		copy(b.data[b.start+off+1:b.start+b.size+1], b.data[b.start+off:b.start+b.size])
	}
	*b.at(off) = v
	b.size++
	d.n++
	return nil
}

// Remove deletes and returns element i, shifting the smaller side of its block.
func (d *Deque[T]) Remove(i int) (T, error) {
	var zero T
	if err := d.checkIndex(i, d.n); err != nil {
		return zero, err
	}
	b, off := d.locate(i)
	v := *b.at(off)
	if off < b.size/2 {
		copy(b.data[b.start+1:b.start+off+1], b.data[b.start:b.start+off])
		b.data[b.start] = zero
		b.start++
	} else {
		copy(b.data[b.start+off:b.start+b.size-1], b.data[b.start+off+1:b.start+b.size])
		b.data[b.start+b.size-1] = zero
	}
	b.size--
	d.n--
	d.rebalance(b)
	return v, nil
}

// Clear removes every element and block.
func (d *Deque[T]) Clear() {
	for b := d.head; b != nil; {
		nxt := b.next
		clear(b.data)
		b.prev, b.next = nil, nil
		b = nxt
	}
	d.head, d.tail = nil, nil
	d.n, d.nblocks = 0, 0
}

// All iterates over the elements from front to back.
func (d *Deque[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for b := d.head; b != nil; b = b.next {
			for _, v := range b.data[b.start : b.start+b.size] {
				if !yield(i, v) {
					return
				}
				i++
			}
		}
	}
}

// Values returns a copy of the elements from front to back.
func (d *Deque[T]) Values() []T {
	out := make([]T, 0, d.n)
	for _, v := range d.All() {
		out = append(out, v)
	}
	return out
}

// Clone returns a deque with the same elements and block options.
func (d *Deque[T]) Clone() *Deque[T] {
	c := New[T](Options{BlockSize: d.blockSize, MinBlockSize: d.minSize})
	for b := d.head; b != nil; b = b.next {
		nb := c.newBlock()
		copy(nb.data, b.data)
		nb.start, nb.size = b.start, b.size
		c.linkAfter(c.tail, nb)
	}
	c.n = d.n
	return c
}

// check verifies the structural invariants; used by tests.
func (d *Deque[T]) check() error {
	total, blocks := 0, 0
	var prev *block[T]
	for b := d.head; b != nil; b = b.next {
		if b.prev != prev {
			return fmt.Errorf("deque: broken prev link at block %d", blocks)
		}
		if b.start < 0 || b.size < 0 || b.start+b.size > len(b.data) {
			return fmt.Errorf("deque: block %d range [%d,+%d) outside %d", blocks, b.start, b.size, len(b.data))
		}
		if b.size == 0 {
			return fmt.Errorf("deque: empty block %d left linked", blocks)
		}
		total += b.size
		blocks++
		prev = b
	}
	if prev != d.tail {
		return fmt.Errorf("deque: tail mismatch")
	}
	if total != d.n || blocks != d.nblocks {
		return fmt.Errorf("deque: counted %d elements in %d blocks, want %d in %d", total, blocks, d.n, d.nblocks)
	}
	if (d.n == 0) != (d.head == nil) {
		return fmt.Errorf("deque: head nil=%v with %d elements", d.head == nil, d.n)
	}
	return nil
}

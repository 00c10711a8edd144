// Package list provides an ordered list of byte values.
//
// Values are stored once, as length-tagged blobs in the list's own arena. The
// order lives in a deque of arena offsets, so pushes, pops and inserts move
// only 4-byte offsets and never the value bytes.
//
// Indices may be negative: -1 is the last element, -Len() the first.
package list

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/hujiyo/Mhuixs-sub001/engine/arena"
	"github.com/hujiyo/Mhuixs-sub001/engine/deque"
)

// Options configures a List.
type Options struct {
	Arena arena.Options
	Deque deque.Options
}

// DefaultOptions returns the default list configuration. The arena starts
// at 4 KiB and grows in 4 KiB steps, so empty lists stay cheap.
func DefaultOptions() Options {
	return Options{
		Arena: arena.Options{BlockSize: 16, Blocks: 256, GrowBlocks: 256},
		Deque: deque.DefaultOptions(),
	}
}

func (o Options) withDefaults() Options {
	if o.Arena == (arena.Options{}) {
		o.Arena = DefaultOptions().Arena
	}
	return o
}

// List is an ordered sequence of non-empty byte values.
type List struct {
	opts  Options
	mem   *arena.Arena
	index *deque.Deque[arena.Offset]
}

// New returns an empty list.
func New(opts Options) (*List, error) {
	opts = opts.withDefaults()
	mem, err := arena.New(opts.Arena)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return &List{
		opts:  opts,
		mem:   mem,
		index: deque.New[arena.Offset](opts.Deque),
	}, nil
}

// Len returns the number of elements.
func (l *List) Len() int { return l.index.Len() }

// resolve maps a possibly negative index onto [0, limit).
func (l *List) resolve(i, limit int) (int, error) {
	if i < 0 {
		i += l.Len()
	}
	if i < 0 || i >= limit {
		return 0, fmt.Errorf("%w: %d (len %d)", ErrIndex, i, l.Len())
	}
	return i, nil
}

func (l *List) store(v []byte) (arena.Offset, error) {
	if len(v) == 0 {
		return 0, ErrEmptyValue
	}
	off, err := l.mem.PutBlob(v)
	if err != nil {
		return 0, fmt.Errorf("list: store value: %w", err)
	}
	return off, nil
}

// take copies the value at off out of the arena and frees it.
func (l *List) take(off arena.Offset) ([]byte, error) {
	v, err := l.mem.Blob(off)
	if err != nil {
		return nil, err
	}
	return v, l.mem.FreeBlob(off)
}

// LPush adds v at the head.
func (l *List) LPush(v []byte) error {
	off, err := l.store(v)
	if err != nil {
		return err
	}
	l.index.PushFront(off)
	return nil
}

// RPush adds v at the tail.
func (l *List) RPush(v []byte) error {
	off, err := l.store(v)
	if err != nil {
		return err
	}
	l.index.PushBack(off)
	return nil
}

// LPop removes and returns the head value.
func (l *List) LPop() ([]byte, error) {
	off, err := l.index.PopFront()
	if err != nil {
		return nil, ErrEmpty
	}
	return l.take(off)
}

// RPop removes and returns the tail value.
func (l *List) RPop() ([]byte, error) {
	off, err := l.index.PopBack()
	if err != nil {
		return nil, ErrEmpty
	}
	return l.take(off)
}

// Get returns a copy of the value at index i.
func (l *List) Get(i int) ([]byte, error) {
	i, err := l.resolve(i, l.Len())
	if err != nil {
		return nil, err
	}
	off, err := l.index.Get(i)
	if err != nil {
		return nil, err
	}
	return l.mem.Blob(off)
}

// Insert places v before index i. i == Len() appends.
func (l *List) Insert(i int, v []byte) error {
	i, err := l.resolve(i, l.Len()+1)
	if err != nil {
		return err
	}
	off, err := l.store(v)
	if err != nil {
		return err
	}
	if err := l.index.Insert(i, off); err != nil {
		_ = l.mem.FreeBlob(off)
		return err
	}
	return nil
}

// Update replaces the value at index i.
func (l *List) Update(i int, v []byte) error {
	i, err := l.resolve(i, l.Len())
	if err != nil {
		return err
	}
	off, err := l.store(v)
	if err != nil {
		return err
	}
	old, _ := l.index.Get(i)
	if err := l.index.Set(i, off); err != nil {
		_ = l.mem.FreeBlob(off)
		return err
	}
	return l.mem.FreeBlob(old)
}

// Delete removes the value at index i.
func (l *List) Delete(i int) error {
	i, err := l.resolve(i, l.Len())
	if err != nil {
		return err
	}
	off, err := l.index.Remove(i)
	if err != nil {
		return err
	}
	return l.mem.FreeBlob(off)
}

// Find returns the index of the first element equal to v.
func (l *List) Find(v []byte) (int, error) {
	for i, off := range l.index.All() {
		got, err := l.mem.BlobView(off)
		if err != nil {
			return 0, err
		}
		if bytes.Equal(got, v) {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// All iterates over the values from head to tail. Yielded slices are copies.
func (l *List) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for i, off := range l.index.All() {
			v, err := l.mem.Blob(off)
			if err != nil {
				return
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values returns copies of every value from head to tail.
func (l *List) Values() [][]byte {
	out := make([][]byte, 0, l.Len())
	for _, v := range l.All() {
		out = append(out, v)
	}
	return out
}

// Clear removes every element. Arena capacity is kept.
func (l *List) Clear() {
	l.index.Clear()
	l.mem.Reset()
}

// Clone returns an independent copy of the list.
func (l *List) Clone() (*List, error) {
	mem, err := l.mem.Clone()
	if err != nil {
		return nil, fmt.Errorf("list: clone: %w", err)
	}
	return &List{opts: l.opts, mem: mem, index: l.index.Clone()}, nil
}

// Release frees the list's storage. The list is unusable afterwards.
func (l *List) Release() error {
	l.index.Clear()
	return l.mem.Release()
}

// Stats returns the backing arena's statistics.
func (l *List) Stats() arena.Stats {
	return l.mem.Stats()
}

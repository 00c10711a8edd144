// Package bitvec provides a growable bit vector with range operations.
//
// Bits are addressed by uint64 offsets. Writes past the current length grow the
// vector, zero-filling every new bit; the vector never shrinks except through Shr.
// Storage is a bitset.BitSet whose words are scanned directly by the range
// operations, so partial head and tail words are handled with masks and the
// words in between are filled or counted whole.
package bitvec

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

const wordBits = 64

// DefaultMaxBits is the default length limit, 512 MiB of words.
const DefaultMaxBits = 1 << 32

// Options configures a Vector. Zero fields take the package defaults.
type Options struct {
	MaxBits uint64 // longest length growth may reach
}

// DefaultOptions returns the default vector configuration.
func DefaultOptions() Options {
	return Options{MaxBits: DefaultMaxBits}
}

func (o Options) withDefaults() Options {
	if o.MaxBits == 0 {
		o.MaxBits = DefaultMaxBits
	}
	return o
}

// Vector is a growable sequence of bits.
type Vector struct {
	bits    *bitset.BitSet
	maxBits uint64
}

// New returns a vector of n zero bits with the default options. n is
// clamped to DefaultMaxBits.
func New(n uint64) *Vector {
	v, _ := NewWithOptions(min(n, DefaultMaxBits), Options{})
	return v
}

// NewWithOptions returns a vector of n zero bits. It fails with ErrGrowFail
// when n exceeds opts.MaxBits.
func NewWithOptions(n uint64, opts Options) (*Vector, error) {
	opts = opts.withDefaults()
	if n > opts.MaxBits {
		return nil, fmt.Errorf("%w: %d bits exceeds limit %d", ErrGrowFail, n, opts.MaxBits)
	}
	return &Vector{bits: bitset.New(uint(n)), maxBits: opts.MaxBits}, nil
}

// Parse builds a vector from a string of '0' and '1' characters; character i
// becomes bit i. Any character other than '0' sets its bit.
func Parse(s string) *Vector {
	v := New(uint64(len(s)))
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			v.bits.Set(uint(i))
		}
	}
	return v
}

// derive wraps a result bit set with v's limit.
func (v *Vector) derive(b *bitset.BitSet) *Vector {
	return &Vector{bits: b, maxBits: v.maxBits}
}

// Len returns the length in bits.
func (v *Vector) Len() uint64 { return uint64(v.bits.Len()) }

// MaxBits returns the length limit.
func (v *Vector) MaxBits() uint64 { return v.maxBits }

// checkGrow reports whether the vector may reach n bits.
func (v *Vector) checkGrow(n uint64) error {
	if n > v.maxBits {
		return fmt.Errorf("%w: length %d exceeds limit %d", ErrGrowFail, n, v.maxBits)
	}
	return nil
}

// Grow extends the vector to n bits. It never shrinks and fails with
// ErrGrowFail past the limit, leaving the vector unchanged.
func (v *Vector) Grow(n uint64) error {
	if n <= v.Len() {
		return nil
	}
	if err := v.checkGrow(n); err != nil {
		return err
	}
	v.bits.Set(uint(n - 1))
	v.bits.Clear(uint(n - 1))
	return nil
}

// Get returns bit o. Bits past the length read as false.
func (v *Vector) Get(o uint64) bool {
	return v.bits.Test(uint(o))
}

// Set writes bit o, growing the vector when o is past the length.
func (v *Vector) Set(o uint64, value bool) error {
	if o >= v.maxBits {
		return fmt.Errorf("%w: offset %d exceeds limit %d", ErrGrowFail, o, v.maxBits)
	}
	if err := v.Grow(o + 1); err != nil {
		return err
	}
	v.bits.SetTo(uint(o), value)
	return nil
}

// SetRange writes n bits starting at o.
func (v *Vector) SetRange(o, n uint64, value bool) error {
	if n == 0 || o+n < o {
		return fmt.Errorf("%w: offset %d, len %d", ErrRange, o, n)
	}
	end := o + n // exclusive
	if err := v.Grow(end); err != nil {
		return err
	}

	words := v.bits.Bytes()
	sw, ew := o/wordBits, (end-1)/wordBits
	apply := func(i uint64, mask uint64) {
		if value {
			words[i] |= mask
		} else {
			words[i] &^= mask
		}
	}

	if sw == ew {
		apply(sw, (^uint64(0)>>(wordBits-(end-o)))<<(o%wordBits))
		return nil
	}
	apply(sw, ^uint64(0)<<(o%wordBits))
	fill := uint64(0)
	if value {
		fill = ^uint64(0)
	}
	for i := sw + 1; i < ew; i++ {
		words[i] = fill
	}
	apply(ew, ^uint64(0)>>(wordBits-1-(end-1)%wordBits))
	return nil
}

// SetFromStream writes len(stream) bits starting at o. A character equal to
// zero clears its bit; any other character sets it.
func (v *Vector) SetFromStream(o uint64, stream string, zero byte) error {
	if len(stream) == 0 {
		return fmt.Errorf("%w: empty stream", ErrRange)
	}
	end := o + uint64(len(stream))
	if end < o {
		return fmt.Errorf("%w: offset %d, len %d", ErrRange, o, len(stream))
	}
	if err := v.Grow(end); err != nil {
		return err
	}
	for i := 0; i < len(stream); i++ {
		v.bits.SetTo(uint(o)+uint(i), stream[i] != zero)
	}
	return nil
}

// checkRange validates the inclusive range [start, end].
func (v *Vector) checkRange(start, end uint64) error {
	if start > end || end >= v.Len() {
		return fmt.Errorf("%w: [%d,%d] with length %d", ErrRange, start, end, v.Len())
	}
	return nil
}

// edgeMask returns the mask of bits of word i that fall inside [start, end].
func edgeMask(i, start, end uint64) uint64 {
	mask := ^uint64(0)
	if i == start/wordBits {
		mask &= ^uint64(0) << (start % wordBits)
	}
	if i == end/wordBits {
		mask &= ^uint64(0) >> (wordBits - 1 - end%wordBits)
	}
	return mask
}

// Count returns the number of set bits in the inclusive range [start, end].
func (v *Vector) Count(start, end uint64) (uint64, error) {
	if err := v.checkRange(start, end); err != nil {
		return 0, err
	}
	words := v.bits.Bytes()
	var n int
	for i := start / wordBits; i <= end/wordBits; i++ {
		n += bits.OnesCount64(words[i] & edgeMask(i, start, end))
	}
	return uint64(n), nil
}

// CountAll returns the number of set bits in the whole vector.
func (v *Vector) CountAll() uint64 {
	return uint64(v.bits.Count())
}

// Find returns the smallest offset in [start, end] whose bit equals value.
func (v *Vector) Find(value bool, start, end uint64) (uint64, error) {
	if err := v.checkRange(start, end); err != nil {
		return 0, err
	}
	words := v.bits.Bytes()
	for i := start / wordBits; i <= end/wordBits; i++ {
		w := words[i]
		if !value {
			w = ^w
		}
		if w &= edgeMask(i, start, end); w != 0 {
			return i*wordBits + uint64(bits.TrailingZeros64(w)), nil
		}
	}
	return 0, fmt.Errorf("%w: %v in [%d,%d]", ErrNotFound, value, start, end)
}

// Append adds the bits of other after the last bit of v.
func (v *Vector) Append(other *Vector) error {
	base := v.Len()
	if other.Len() == 0 {
		return nil
	}
	if err := v.Grow(base + other.Len()); err != nil {
		return err
	}
	for i, ok := other.bits.NextSet(0); ok; i, ok = other.bits.NextSet(i + 1) {
		v.bits.Set(uint(base) + i)
	}
	return nil
}

// Clone returns an independent copy.
func (v *Vector) Clone() *Vector {
	return v.derive(v.bits.Clone())
}

// And returns the bitwise AND of v and other; its length is the shorter length.
func (v *Vector) And(other *Vector) *Vector {
	return v.derive(v.bits.Intersection(other.bits))
}

// Or returns the bitwise OR of v and other; its length is the longer length.
func (v *Vector) Or(other *Vector) *Vector {
	return v.derive(v.bits.Union(other.bits))
}

// Xor returns the bitwise XOR of v and other; its length is the longer length.
func (v *Vector) Xor(other *Vector) *Vector {
	return v.derive(v.bits.SymmetricDifference(other.bits))
}

// Not returns the complement of v over its length.
func (v *Vector) Not() *Vector {
	return v.derive(v.bits.Complement())
}

// Shl moves every bit k positions toward higher offsets. The length grows by k
// and the k lowest bits become zero. It fails with ErrGrowFail when the new
// length would pass the limit.
func (v *Vector) Shl(k uint64) error {
	if k == 0 {
		return nil
	}
	if n := v.Len() + k; n < k || n > v.maxBits {
		return fmt.Errorf("%w: shift by %d exceeds limit %d", ErrGrowFail, k, v.maxBits)
	}
	nb := bitset.New(uint(v.Len() + k))
	for i, ok := v.bits.NextSet(0); ok; i, ok = v.bits.NextSet(i + 1) {
		nb.Set(i + uint(k))
	}
	v.bits = nb
	return nil
}

// Shr moves every bit k positions toward offset 0, dropping the k lowest bits.
// The length shrinks by k; shifting out every bit leaves a single zero bit.
func (v *Vector) Shr(k uint64) {
	if k == 0 {
		return
	}
	if k >= v.Len() {
		v.bits = bitset.New(1)
		return
	}
	nb := bitset.New(uint(v.Len() - k))
	for i, ok := v.bits.NextSet(uint(k)); ok; i, ok = v.bits.NextSet(i + 1) {
		nb.Set(i - uint(k))
	}
	v.bits = nb
}

// Equal reports whether v and other have the same length and bits.
func (v *Vector) Equal(other *Vector) bool {
	return v.bits.Equal(other.bits)
}

// String renders the vector as '0'/'1' characters, bit 0 first.
func (v *Vector) String() string {
	var sb strings.Builder
	sb.Grow(int(v.Len()))
	for i := uint64(0); i < v.Len(); i++ {
		if v.bits.Test(uint(i)) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ByteSize returns the storage size in bytes, rounded up to whole words.
func (v *Vector) ByteSize() int {
	return len(v.bits.Bytes()) * 8
}

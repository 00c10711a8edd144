package arena

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, blockSize, blocks, grow int) *Arena {
	t.Helper()
	a, err := New(Options{BlockSize: blockSize, Blocks: blocks, GrowBlocks: grow})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Release() })
	return a
}

func TestNew_RejectsBadSizes(t *testing.T) {
	for _, opts := range []Options{
		{BlockSize: 12, Blocks: 10},
		{BlockSize: -8, Blocks: 10},
		{BlockSize: 8, Blocks: -1},
	} {
		_, err := New(opts)
		require.ErrorIs(t, err, ErrBadBlockSize, "%+v", opts)
	}
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBlockSize, a.BlockSize())
	assert.Equal(t, DefaultBlocks, a.Blocks())
}

func TestHeaderLayout(t *testing.T) {
	a := newTestArena(t, 16, 20, 8)

	total, bs, blocks := a.Header()
	assert.Equal(t, uint32(HeaderSize+3+20*16), total)
	assert.Equal(t, uint32(16), bs)
	assert.Equal(t, uint32(20), blocks)
	assert.Equal(t, HeaderSize+3, a.Address(0))
	assert.Equal(t, HeaderSize+3+32, a.Address(32))
}

func TestAlloc_FirstFit(t *testing.T) {
	a := newTestArena(t, 8, 16, 8)

	o1, err := a.Alloc(10) // 2 blocks
	require.NoError(t, err)
	o2, err := a.Alloc(8) // 1 block
	require.NoError(t, err)
	o3, err := a.Alloc(24) // 3 blocks
	require.NoError(t, err)
	assert.Equal(t, Offset(0), o1)
	assert.Equal(t, Offset(16), o2)
	assert.Equal(t, Offset(24), o3)

	require.NoError(t, a.Free(o1, 10))

	// A one-block request reuses the first hole.
	o4, err := a.Alloc(1)
	require.NoError(t, err)
	assert.Equal(t, Offset(0), o4)

	// A two-block request does not fit in the remaining one-block hole.
	o5, err := a.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, Offset(48), o5)
	assert.Equal(t, 1+1+3+2, a.UsedBlocks())
}

func TestAlloc_ZeroLength(t *testing.T) {
	a := newTestArena(t, 8, 4, 4)
	_, err := a.Alloc(0)
	require.ErrorIs(t, err, ErrZeroLength)
}

func TestAlloc_GrowsAndPreservesData(t *testing.T) {
	a := newTestArena(t, 8, 4, 4)

	off, err := a.PutBlob([]byte("abcdefghijkl")) // 16 bytes, 2 blocks
	require.NoError(t, err)

	// Needs 5 blocks while only the 2 trailing blocks are free.
	big, err := a.Alloc(40)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Blocks(), "two trailing free blocks plus one increment")
	require.True(t, a.IsAllocated(big))

	got, err := a.Blob(off)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijkl", string(got))

	_, _, blocks := a.Header()
	assert.Equal(t, uint32(a.Blocks()), blocks)
	assert.Equal(t, 1, a.Stats().GrowCalls)
}

func TestAlloc_GrowUsesTrailingFreeBlocks(t *testing.T) {
	a := newTestArena(t, 8, 8, 4)

	_, err := a.Alloc(8 * 6)
	require.NoError(t, err)

	// Two trailing blocks are free; a four-block run needs one increment only.
	off, err := a.Alloc(8 * 4)
	require.NoError(t, err)
	assert.Equal(t, Offset(6*8), off)
	assert.Equal(t, 12, a.Blocks())
}

func TestAlloc_MaxBytes(t *testing.T) {
	a, err := New(Options{BlockSize: 8, Blocks: 4, GrowBlocks: 4, MaxBytes: 64})
	require.NoError(t, err)

	_, err = a.Alloc(32)
	require.NoError(t, err)

	before := a.Stats()
	_, err = a.Alloc(64)
	require.ErrorIs(t, err, ErrGrowFail)

	after := a.Stats()
	assert.Equal(t, before.Blocks, after.Blocks, "failed grow must leave the arena untouched")
	assert.Equal(t, before.UsedBlocks, after.UsedBlocks)
}

func TestFree_Validation(t *testing.T) {
	a := newTestArena(t, 8, 8, 8)

	off, err := a.Alloc(16)
	require.NoError(t, err)

	require.ErrorIs(t, a.Free(off+3, 16), ErrMisaligned)
	require.ErrorIs(t, a.Free(off, 0), ErrZeroLength)
	require.ErrorIs(t, a.Free(Offset(8*8), 8), ErrBadOffset)
	require.ErrorIs(t, a.Free(off, 24), ErrNotAllocated, "third block was never allocated")

	// Failed frees must not clear anything.
	assert.True(t, a.IsAllocated(off))
	assert.True(t, a.IsAllocated(off+8))
	assert.Equal(t, 2, a.UsedBlocks())

	require.NoError(t, a.Free(off, 16))
	require.ErrorIs(t, a.Free(off, 16), ErrNotAllocated, "double free")
	assert.Zero(t, a.UsedBlocks())
}

func TestCheck(t *testing.T) {
	a := newTestArena(t, 8, 8, 8)
	off, err := a.Alloc(8)
	require.NoError(t, err)

	require.NoError(t, a.Check(off))
	require.ErrorIs(t, a.Check(off+1), ErrMisaligned)
	require.ErrorIs(t, a.Check(off+8), ErrNotAllocated)
	require.ErrorIs(t, a.Check(Offset(1<<20)), ErrBadOffset)
}

func TestBytes_Bounds(t *testing.T) {
	a := newTestArena(t, 8, 4, 4)
	off, err := a.Alloc(8)
	require.NoError(t, err)

	b, err := a.Bytes(off, 8)
	require.NoError(t, err)
	copy(b, "12345678")

	_, err = a.Bytes(off, 4*8+1)
	require.ErrorIs(t, err, ErrBadOffset)
}

func TestBlob_RoundTrip(t *testing.T) {
	a := newTestArena(t, 8, 8, 8)

	off, err := a.PutBlob([]byte("hello"))
	require.NoError(t, err)
	n, err := a.BlobLen(off)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := a.Blob(off)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	require.NoError(t, a.FreeBlob(off))
	assert.False(t, a.IsAllocated(off))
	_, err = a.Blob(off)
	require.ErrorIs(t, err, ErrNotAllocated)
}

func TestResetCloneRelease(t *testing.T) {
	a := newTestArena(t, 8, 8, 8)
	off, err := a.PutBlob([]byte("keep"))
	require.NoError(t, err)

	c, err := a.Clone()
	require.NoError(t, err)
	defer c.Release()

	a.Reset()
	assert.Zero(t, a.UsedBlocks())
	assert.False(t, a.IsAllocated(off))

	got, err := c.Blob(off)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))

	require.NoError(t, a.Release())
	_, err = a.Alloc(8)
	require.ErrorIs(t, err, ErrReleased)
	require.NoError(t, a.Release(), "double release")
}

func TestMmapBacking(t *testing.T) {
	a, err := New(Options{BlockSize: 64, Blocks: 16, GrowBlocks: 16, Mmap: true})
	require.NoError(t, err)
	defer a.Release()

	offs := make([]Offset, 0, 40)
	for i := range 40 {
		off, err := a.PutBlob([]byte{byte(i), byte(i + 1)})
		require.NoError(t, err)
		offs = append(offs, off)
	}
	for i, off := range offs {
		got, err := a.Blob(off)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i), byte(i + 1)}, got)
	}
}

// Test_NetEffectProperty replays random alloc/free sequences against a
// reference map and checks allocation state and non-overlap after every step.
func Test_NetEffectProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	a := newTestArena(t, 8, 32, 16)

	live := map[Offset]int{} // offset -> length
	for step := range 2000 {
		if len(live) > 0 && rng.IntN(3) == 0 {
			// free a random live allocation
			var victim Offset
			k := rng.IntN(len(live))
			for off := range live {
				if k == 0 {
					victim = off
					break
				}
				k--
			}
			require.NoError(t, a.Free(victim, live[victim]), "step %d", step)
			delete(live, victim)
		} else {
			n := 1 + rng.IntN(50)
			off, err := a.Alloc(n)
			require.NoError(t, err, "step %d", step)
			live[off] = n
		}

		used := map[int]Offset{}
		total := 0
		for off, n := range live {
			first := int(off) / 8
			cnt := (n + 7) / 8
			total += cnt
			for b := first; b < first+cnt; b++ {
				prev, dup := used[b]
				require.False(t, dup, "step %d: block %d shared by %d and %d", step, b, prev, off)
				used[b] = off
			}
		}
		require.Equal(t, total, a.UsedBlocks(), "step %d", step)
		for b := range a.Blocks() {
			_, want := used[b]
			require.Equal(t, want, a.IsAllocated(Offset(b*8)), "step %d block %d", step, b)
		}
	}
}

func TestErrorsAreWrapped(t *testing.T) {
	a := newTestArena(t, 8, 4, 4)
	err := a.Free(5, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisaligned))
	assert.Contains(t, err.Error(), "arena:")
}

func BenchmarkAllocFree(b *testing.B) {
	a, err := New(Options{BlockSize: 64, Blocks: 4096, GrowBlocks: 1024})
	if err != nil {
		b.Fatal(err)
	}
	defer a.Release()

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		off, err := a.Alloc(100 + i%300)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(off, 100+i%300); err != nil {
			b.Fatal(err)
		}
	}
}

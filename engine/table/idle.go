package table

import "github.com/google/btree"

// Range is a run of unused row bytes.
type Range struct {
	Offset int
	Size   int
}

// idleMap tracks idle ranges in two orders: by (size, offset) for best-fit
// lookups and by offset for coalescing.
type idleMap struct {
	bySize *btree.BTreeG[Range]
	byOff  *btree.BTreeG[Range]
}

const idleDegree = 8

func newIdleMap() *idleMap {
	return &idleMap{
		bySize: btree.NewG(idleDegree, func(a, b Range) bool {
			if a.Size != b.Size {
				return a.Size < b.Size
			}
			return a.Offset < b.Offset
		}),
		byOff: btree.NewG(idleDegree, func(a, b Range) bool {
			return a.Offset < b.Offset
		}),
	}
}

func (m *idleMap) insert(r Range) {
	m.bySize.ReplaceOrInsert(r)
	m.byOff.ReplaceOrInsert(r)
}

func (m *idleMap) delete(r Range) {
	m.bySize.Delete(r)
	m.byOff.Delete(r)
}

// take removes size bytes from the best-fitting range: an exact size match
// first, else the smallest larger range, ties broken by lowest offset. The
// remainder of a larger range stays idle.
func (m *idleMap) take(size int) (int, bool) {
	var best Range
	found := false
	m.bySize.AscendGreaterOrEqual(Range{Size: size}, func(r Range) bool {
		best, found = r, true
		return false
	})
	if !found {
		return 0, false
	}
	m.delete(best)
	if best.Size > size {
		m.insert(Range{Offset: best.Offset + size, Size: best.Size - size})
	}
	return best.Offset, true
}

// put records [off, off+size) as idle, merging it with adjacent ranges.
func (m *idleMap) put(off, size int) {
	r := Range{Offset: off, Size: size}
	var prev Range
	hasPrev := false
	m.byOff.DescendLessOrEqual(Range{Offset: off}, func(p Range) bool {
		prev, hasPrev = p, p.Offset+p.Size == off
		return false
	})
	if hasPrev {
		m.delete(prev)
		r.Offset, r.Size = prev.Offset, prev.Size+r.Size
	}
	if next, ok := m.byOff.Get(Range{Offset: off + size}); ok {
		m.delete(next)
		r.Size += next.Size
	}
	m.insert(r)
}

// trimTail drops idle ranges that end at usage and returns the new usage.
func (m *idleMap) trimTail(usage int) int {
	for {
		last, ok := m.byOff.Max()
		if !ok || last.Offset+last.Size != usage {
			return usage
		}
		m.delete(last)
		usage = last.Offset
	}
}

func (m *idleMap) len() int { return m.byOff.Len() }

func (m *idleMap) bytes() int {
	n := 0
	m.byOff.Ascend(func(r Range) bool {
		n += r.Size
		return true
	})
	return n
}

// ranges returns the idle ranges ordered by offset.
func (m *idleMap) ranges() []Range {
	out := make([]Range, 0, m.byOff.Len())
	m.byOff.Ascend(func(r Range) bool {
		out = append(out, r)
		return true
	})
	return out
}

func (m *idleMap) clone() *idleMap {
	return &idleMap{bySize: m.bySize.Clone(), byOff: m.byOff.Clone()}
}

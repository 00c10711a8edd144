package kvstore

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinks(t *testing.T) {
	s := New(smallOptions())
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.AddStream(n, nil)
		require.NoError(t, err)
	}
	require.NoError(t, s.Link("a", "b", 0.5))
	require.NoError(t, s.Link("a", "c", 1))
	require.NoError(t, s.Link("a", "b", 0.25))
	require.ErrorIs(t, s.Link("a", "zzz", 1), ErrNotFound)

	links, err := s.Links("a")
	require.NoError(t, err)
	assert.Equal(t, []Link{{Target: "b", Coef: 0.25}, {Target: "c", Coef: 1}}, links)

	require.NoError(t, s.Unlink("a", "c"))
	require.ErrorIs(t, s.Unlink("a", "c"), ErrNotFound)
	links, err = s.Links("a")
	require.NoError(t, err)
	assert.Equal(t, []Link{{Target: "b", Coef: 0.25}}, links)
}

func TestRemove_FixesLinks(t *testing.T) {
	s := New(smallOptions())
	for _, n := range []string{"a", "b", "c", "d"} {
		_, err := s.AddStream(n, nil)
		require.NoError(t, err)
	}
	require.NoError(t, s.Link("a", "b", 1))
	require.NoError(t, s.Link("a", "d", 2))
	require.NoError(t, s.Link("d", "d", 3))
	require.NoError(t, s.Link("c", "b", 4))

	// b is removed; d moves into b's pool slot.
	require.NoError(t, s.Remove("b"))
	assert.Equal(t, []string{"a", "d", "c"}, s.Names())

	links, err := s.Links("a")
	require.NoError(t, err)
	assert.Equal(t, []Link{{Target: "d", Coef: 2}}, links)
	links, err = s.Links("d")
	require.NoError(t, err)
	assert.Equal(t, []Link{{Target: "d", Coef: 3}}, links)
	links, err = s.Links("c")
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.Equal(t, 2, s.Stats().Links)
	checkBacklinks(t, s)
}

// checkBacklinks verifies that every link is mirrored by exactly one
// backlink entry on its target and nothing else is.
func checkBacklinks(t *testing.T, s *Store) {
	t.Helper()
	want := make([]map[int]int, len(s.keys))
	for i := range want {
		want[i] = map[int]int{}
	}
	for i, k := range s.keys {
		for _, l := range k.links {
			require.Less(t, l.to, len(s.keys))
			want[l.to][i]++
		}
	}
	for i, k := range s.keys {
		got := map[int]int{}
		for _, from := range k.backlinks {
			got[from]++
		}
		require.Equal(t, want[i], got, "backlinks of %q", k.name)
	}
}

func TestLinks_AgainstModel(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 8))
	s := New(smallOptions())
	ref := map[string]map[string]float64{}
	name := func() string { return fmt.Sprintf("n%d", rng.IntN(60)) }

	for step := range 4000 {
		a, b := name(), name()
		_, hasA := ref[a]
		_, hasB := ref[b]
		switch op := rng.IntN(10); {
		case !hasA:
			_, err := s.AddStream(a, nil)
			require.NoError(t, err, "step %d", step)
			ref[a] = map[string]float64{}
		case op < 4 && hasB:
			coef := float64(step)
			require.NoError(t, s.Link(a, b, coef), "step %d", step)
			ref[a][b] = coef
		case op < 6 && hasB:
			err := s.Unlink(a, b)
			if _, ok := ref[a][b]; ok {
				require.NoError(t, err, "step %d", step)
				delete(ref[a], b)
			} else {
				require.ErrorIs(t, err, ErrNotFound, "step %d", step)
			}
		case op < 8:
			require.NoError(t, s.Remove(a), "step %d", step)
			delete(ref, a)
			for _, out := range ref {
				delete(out, a)
			}
		}
	}

	checkBacklinks(t, s)
	require.Equal(t, len(ref), s.Len())
	for from, out := range ref {
		links, err := s.Links(from)
		require.NoError(t, err)
		got := map[string]float64{}
		for _, l := range links {
			got[l.Target] = l.Coef
		}
		require.Equal(t, out, got, "links of %q", from)
	}
}

package stream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelNone(t *testing.T) {
	s := New(Options{})
	s.Set([]byte("hello"))
	require.NoError(t, s.Append([]byte(" world")))

	got, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
	assert.Equal(t, 11, s.Len())
	assert.Equal(t, 11, s.StoredLen())
	assert.False(t, s.Compressed())
}

func TestLevelFast_Threshold(t *testing.T) {
	s := New(Options{Level: LevelFast, MinCompressSize: 32})
	s.Set([]byte("short"))
	assert.False(t, s.Compressed(), "below threshold")

	big := bytes.Repeat([]byte("mhuixs "), 100)
	require.NoError(t, s.Append(big))
	assert.True(t, s.Compressed())
	assert.Less(t, s.StoredLen(), s.Len())

	got, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, append([]byte("short"), big...), got)

	require.NoError(t, s.Append([]byte("!")))
	got, err = s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, 5+len(big)+1, len(got))
	assert.Equal(t, byte('!'), got[len(got)-1])
}

func TestBytesIsCopy(t *testing.T) {
	s := New(Options{})
	s.Set([]byte("abc"))
	got, err := s.Bytes()
	require.NoError(t, err)
	got[0] = 'X'
	again, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestClone(t *testing.T) {
	s := New(Options{Level: LevelFast, MinCompressSize: 1})
	s.Set([]byte("payload"))
	c := s.Clone()
	s.Set([]byte("other"))

	got, err := c.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
	assert.Equal(t, LevelFast, c.Level())
}

func TestCorrupt(t *testing.T) {
	s := New(Options{Level: LevelFast, MinCompressSize: 1})
	s.Set([]byte("payload payload payload"))
	s.stored = []byte{0xff, 0xff, 0xff}
	_, err := s.Bytes()
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"": LevelNone, "lv0": LevelNone, "snappy": LevelFast, "1": LevelFast} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("zstd")
	require.ErrorIs(t, err, ErrBadLevel)
}

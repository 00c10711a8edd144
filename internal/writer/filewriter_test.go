package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	w := &FileWriter{Path: path}

	require.NoError(t, w.Write([]byte("first")))
	require.NoError(t, w.Write([]byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileWriter_MissingDir(t *testing.T) {
	w := &FileWriter{Path: filepath.Join(t.TempDir(), "nope", "report.json")}
	require.Error(t, w.Write([]byte("x")))
}

func TestFileWriter_Perm(t *testing.T) {
	dir := t.TempDir()

	def := filepath.Join(dir, "default.json")
	require.NoError(t, (&FileWriter{Path: def}).Write([]byte("{}")))
	fi, err := os.Stat(def)
	require.NoError(t, err)
	assert.Equal(t, DefaultPerm, fi.Mode().Perm())

	private := filepath.Join(dir, "private.json")
	require.NoError(t, (&FileWriter{Path: private, Perm: 0o600}).Write([]byte("{}")))
	fi, err = os.Stat(private)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

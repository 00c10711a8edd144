// Package writer emits CLI reports to files.
package writer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPerm is the mode of report files when FileWriter.Perm is zero.
const DefaultPerm fs.FileMode = 0o644

// tempPattern names in-flight reports next to their destination.
const tempPattern = ".mhuixs-report-*.tmp"

// FileWriter replaces a report file atomically.
type FileWriter struct {
	Path string
	Perm fs.FileMode // zero uses DefaultPerm
}

// Write stores b at Path. The bytes go to a temp file in the same directory,
// are synced, and the temp file is renamed over Path, so readers see either
// the old report or the new one.
func (w *FileWriter) Write(b []byte) (err error) {
	perm := w.Perm
	if perm == 0 {
		perm = DefaultPerm
	}
	tmp, err := os.CreateTemp(filepath.Dir(w.Path), tempPattern)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		return fmt.Errorf("writer: write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("writer: chmod %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("writer: sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writer: close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), w.Path); err != nil {
		return fmt.Errorf("writer: replace %s: %w", w.Path, err)
	}
	return nil
}

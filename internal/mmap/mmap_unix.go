//go:build unix

package mmap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Anon maps n bytes of zeroed, private, anonymous memory.
func Anon(n int) ([]byte, func() error, error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("mmap: negative size %d", n)
	}
	if n == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: map %d bytes: %w", n, err)
	}
	released := false
	cleanup := func() error {
		if released {
			return nil
		}
		released = true
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, cleanup, nil
}

// Supported reports whether Anon returns real mappings on this platform.
func Supported() bool { return true }

//go:build !unix

package mmap

import "fmt"

// Anon allocates n zeroed bytes on the Go heap when mmap is not available.
func Anon(n int) ([]byte, func() error, error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("mmap: negative size %d", n)
	}
	return make([]byte, n), func() error { return nil }, nil
}

// Supported reports whether Anon returns real mappings on this platform.
func Supported() bool { return false }

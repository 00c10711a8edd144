// Package mmap provides anonymous memory mappings used as arena backing storage.
//
// On unix platforms Anon returns memory from mmap(2) that lives outside the Go
// heap and must be released with the returned cleanup function. Elsewhere it
// falls back to an ordinary heap slice and the cleanup is a no-op.
package mmap

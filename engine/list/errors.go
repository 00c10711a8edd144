package list

import "errors"

var (
	// ErrEmpty indicates a pop from an empty list.
	ErrEmpty = errors.New("list: empty")

	// ErrEmptyValue indicates an attempt to store a zero-length value.
	ErrEmptyValue = errors.New("list: empty value")

	// ErrIndex indicates an index outside the list.
	ErrIndex = errors.New("list: index out of range")

	// ErrNotFound indicates that Find matched no element.
	ErrNotFound = errors.New("list: value not found")
)

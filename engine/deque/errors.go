package deque

import "errors"

var (
	// ErrEmpty indicates a pop or peek on an empty deque.
	ErrEmpty = errors.New("deque: empty")

	// ErrIndex indicates an index outside the deque.
	ErrIndex = errors.New("deque: index out of range")
)

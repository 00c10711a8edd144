package stream

import "errors"

var (
	// ErrBadLevel is returned for an unknown compression level.
	ErrBadLevel = errors.New("stream: unknown compression level")

	// ErrCorrupt is returned when stored bytes fail to decompress.
	ErrCorrupt = errors.New("stream: corrupt compressed data")
)

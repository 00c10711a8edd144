package kvstore

import "errors"

var (
	// ErrExists is returned by Add when the name is already taken.
	ErrExists = errors.New("kvstore: key exists")

	// ErrNotFound is returned when a key or link does not exist.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrLoadFactor is returned when an add would push the load factor to
	// 0.75 or more and the bucket array cannot grow.
	ErrLoadFactor = errors.New("kvstore: load factor exceeded")

	// ErrEmptyName is returned for an empty key name.
	ErrEmptyName = errors.New("kvstore: empty key name")

	// ErrBadType is returned for an unknown key type or payload.
	ErrBadType = errors.New("kvstore: unknown key type")

	// ErrWrongType is returned when a typed accessor hits a key of another type.
	ErrWrongType = errors.New("kvstore: wrong key type")

	// ErrBadHasher is returned for an unknown hasher name.
	ErrBadHasher = errors.New("kvstore: unknown hasher")
)

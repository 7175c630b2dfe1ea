package cache

import "errors"

var (
	// ErrBadParams indicates a nil identity slot or a non-positive size.
	ErrBadParams = errors.New("cache: bad parameters")

	// ErrAlreadyAllocated indicates an identity slot that still names a live entry.
	ErrAlreadyAllocated = errors.New("cache: already allocated")

	// ErrBadID indicates an identity slot that names no live entry.
	ErrBadID = errors.New("cache: stale or unknown id")

	// ErrNoMemory indicates the request does not fit even with the cache empty.
	ErrNoMemory = errors.New("cache: out of memory")

	// ErrCorrupt indicates a trashed header or inconsistent rings.
	ErrCorrupt = errors.New("cache: corrupted")
)

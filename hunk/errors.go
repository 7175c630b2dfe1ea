package hunk

import "errors"

var (
	// ErrBadParams indicates an empty arena or a non-positive request size.
	ErrBadParams = errors.New("hunk: bad parameters")

	// ErrNoSpace indicates the gap between the low and high marks is too small.
	ErrNoSpace = errors.New("hunk: not enough space allocated")

	// ErrBadMark indicates a pop past the start of a stack or a mark beyond current usage.
	ErrBadMark = errors.New("hunk: bad mark")

	// ErrCorrupt indicates a trashed sentinel or an implausible block size.
	ErrCorrupt = errors.New("hunk: corrupted arena")
)

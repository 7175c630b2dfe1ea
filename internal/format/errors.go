package format

import "errors"

var (
	// ErrSignatureMismatch indicates a header had an unexpected sentinel.
	ErrSignatureMismatch = errors.New("format: sentinel mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
)

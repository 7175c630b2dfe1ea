package zone

import "errors"

var (
	// ErrBadParams indicates a non-positive request or an unusable backing size.
	ErrBadParams = errors.New("zone: bad parameters")

	// ErrBadPointer indicates a reference that does not start a zone block.
	ErrBadPointer = errors.New("zone: freeing a pointer without a zone sentinel")

	// ErrDoubleFree indicates a reference to a block that is already free.
	ErrDoubleFree = errors.New("zone: block already free")

	// ErrTrashed indicates the trailing trash tester of a used block was overwritten.
	ErrTrashed = errors.New("zone: trash tester overwritten")

	// ErrCorrupt indicates a broken ring.
	ErrCorrupt = errors.New("zone: corrupted block ring")
)

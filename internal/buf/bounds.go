// Package buf contains bounds helpers for offset arithmetic over byte arenas.
//
// Every allocator tier addresses memory as (offset, length) pairs into one
// shared []byte. These helpers keep the overflow and range checks in one place.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Span validates that n bytes starting at off fit in a region of regionLen
// bytes and returns the exclusive end offset.
func Span(regionLen, off, n int) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length: %d", n)
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", off, n)
	}
	if end > regionLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, regionLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
// The result's capacity is clipped so appends cannot spill into neighbours.
func Slice(b []byte, off, n int) ([]byte, bool) {
	end, err := Span(len(b), off, n)
	if err != nil {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, err := Span(len(b), off, n)
	return err == nil
}

// Overlaps reports whether [a, a+alen) and [b, b+blen) intersect.
func Overlaps(a, alen, b, blen int) bool {
	if alen <= 0 || blen <= 0 {
		return false
	}
	return a < b+blen && b < a+alen
}

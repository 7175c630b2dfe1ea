package zone

import (
	"fmt"

	"github.com/joshuapare/hunkkit/hunk"
	"github.com/joshuapare/hunkkit/internal/format"
)

var (
	_ hunk.Checker   = (*Zone)(nil)
	_ hunk.Validator = (*Zone)(nil)
)

// Validate walks the ring and returns a *hunk.ValidationError describing the
// first broken invariant, or nil.
func (z *Zone) Validate() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.validate()
}

func (z *Zone) validate() error {
	roverSeen := false
	for off := sentinelOff; ; {
		b, err := format.ZoneBlockAt(z.mem, off)
		if err != nil {
			return &hunk.ValidationError{Type: "ZoneBlock", Message: err.Error(), Offset: off}
		}
		size := b.Size()
		switch {
		case off == sentinelOff && (size != format.ZoneHeaderSize || !b.Used()):
			return &hunk.ValidationError{Type: "ZoneBlock", Message: "ring head is not a used sentinel block", Offset: off}
		case off != sentinelOff && (size < minBlock || size%format.ZoneAlignment != 0 || size > len(z.mem)-off):
			return &hunk.ValidationError{Type: "ZoneBlock", Message: fmt.Sprintf("bad size %d", size), Offset: off}
		}
		if off == z.rover {
			roverSeen = true
		}

		next := b.Next()
		if next == sentinelOff {
			if b.End() != len(z.mem) {
				return &hunk.ValidationError{
					Type:    "ZoneRing",
					Message: fmt.Sprintf("last block ends at %d, region ends at %d", b.End(), len(z.mem)),
					Offset:  off,
				}
			}
		} else if b.End() != next {
			return &hunk.ValidationError{Type: "ZoneRing", Message: "block size doesn't touch the next block", Offset: off}
		}
		if next < 0 || next+format.ZoneHeaderSize > len(z.mem) {
			return &hunk.ValidationError{Type: "ZoneRing", Message: fmt.Sprintf("next offset %d out of range", next), Offset: off}
		}
		nb := z.block(next)
		if nb.Prev() != off {
			return &hunk.ValidationError{Type: "ZoneRing", Message: "next block doesn't have a proper back link", Offset: off}
		}
		if b.Used() {
			if off != sentinelOff && b.Trash() != format.ZoneSentinel {
				return &hunk.ValidationError{Type: "ZoneBlock", Message: "trash tester overwritten", Offset: off}
			}
		} else if !nb.Used() {
			return &hunk.ValidationError{Type: "ZoneRing", Message: "two adjacent free blocks", Offset: off}
		}

		if next == sentinelOff {
			break
		}
		off = next
	}
	if !roverSeen {
		return &hunk.ValidationError{Type: "ZoneRing", Message: fmt.Sprintf("rover %d is not a block", z.rover), Offset: z.rover}
	}
	return nil
}

// Check validates the ring; corruption is fatal.
func (z *Zone) Check() {
	z.mu.Lock()
	defer z.mu.Unlock()
	if err := z.validate(); err != nil {
		z.con.Fatal(fmt.Errorf("Check: %w: %w", ErrCorrupt, err))
	}
}

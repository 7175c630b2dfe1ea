package hunk

import (
	"fmt"

	"github.com/joshuapare/hunkkit/internal/format"
)

// ValidationError describes the first structural problem found in a tier.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Validate walks both stacks and returns a *ValidationError describing the
// first corrupted header, or nil.
func (h *Hunk) Validate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.validate()
}

func (h *Hunk) validate() error {
	size := len(h.data)
	low, high := int(h.low.Load()), int(h.high.Load())
	if low < 0 || high < 0 || low+high > size {
		return &ValidationError{
			Type:    "Marks",
			Message: fmt.Sprintf("low %d + high %d exceeds arena size %d", low, high, size),
			Offset:  -1,
		}
	}
	if err := h.validateRange("LowBlock", 0, low); err != nil {
		return err
	}
	return h.validateRange("HighBlock", size-high, size)
}

// validateRange walks headers laid back to back over [start, end).
func (h *Hunk) validateRange(kind string, start, end int) error {
	for off := start; off < end; {
		hdr, err := format.HeaderAt(h.data, off, format.HunkSentinel)
		if err != nil {
			return &ValidationError{Type: kind, Message: "trashed sentinel", Offset: off}
		}
		sz := hdr.Size()
		if sz < format.MinHunkBlock || sz%format.HunkAlignment != 0 {
			return &ValidationError{Type: kind, Message: fmt.Sprintf("bad size %d", sz), Offset: off}
		}
		if sz > end-off {
			return &ValidationError{
				Type:    kind,
				Message: fmt.Sprintf("size %d runs past the mark at %d", sz, end),
				Offset:  off,
			}
		}
		off += sz
	}
	return nil
}

// Check validates the stacks and then every registered Checker. Any
// corruption is fatal. The hunk lock is held throughout, so no allocation is
// half done while a tier checks itself against the marks.
func (h *Hunk) Check() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.validate(); err != nil {
		h.con.Fatal(fmt.Errorf("Check: %w: %w", ErrCorrupt, err))
		return
	}
	for _, c := range h.checkers {
		c.Check()
	}
}

package cache

import (
	"fmt"

	"github.com/joshuapare/hunkkit/hunk"
	"github.com/joshuapare/hunkkit/internal/format"
)

// Validate checks every entry header, the address order of the placement
// ring, containment in the hunk's free gap and the agreement of both rings.
// It returns a *hunk.ValidationError or nil.
func (c *Cache) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validate()
}

// bounds returns the gap the entries must respect: the hunk's published gap,
// widened back to the cleared marks while an eviction pass is pending.
func (c *Cache) bounds() (lo, hi int) {
	lo, hi = c.h.Bounds()
	return min(lo, c.clearedLow), max(hi, len(c.mem)-c.clearedHigh)
}

func (c *Cache) validate() error {
	lo, hi := c.bounds()

	placed := 0
	prevEnd := lo
	for s := c.pool[head].next; s != head; s = c.pool[s].next {
		if s < 0 || int(s) >= len(c.pool) || placed >= len(c.pool) {
			return &hunk.ValidationError{Type: "CacheRing", Message: fmt.Sprintf("placement ring reaches bad slot %d", s), Offset: -1}
		}
		e := &c.pool[s]
		if !e.live {
			return &hunk.ValidationError{Type: "CacheRing", Message: fmt.Sprintf("slot %d is linked but not live", s), Offset: e.off}
		}
		hdr, err := format.HeaderAt(c.mem, e.off, format.CacheSentinel)
		if err != nil {
			return &hunk.ValidationError{Type: "CacheEntry", Message: "trashed sentinel", Offset: e.off}
		}
		if hdr.Size() != e.size || e.size%format.HunkAlignment != 0 || e.size < format.MinHunkBlock {
			return &hunk.ValidationError{Type: "CacheEntry", Message: fmt.Sprintf("bad size %d (recorded %d)", hdr.Size(), e.size), Offset: e.off}
		}
		if e.off < prevEnd {
			return &hunk.ValidationError{
				Type:    "CacheEntry",
				Message: fmt.Sprintf("overlaps the previous entry or the low stack (starts before %d)", prevEnd),
				Offset:  e.off,
			}
		}
		if e.off+e.size > hi {
			return &hunk.ValidationError{Type: "CacheEntry", Message: fmt.Sprintf("runs into the high stack at %d", hi), Offset: e.off}
		}
		if c.pool[e.next].prev != s {
			return &hunk.ValidationError{Type: "CacheRing", Message: "next entry doesn't have a proper back link", Offset: e.off}
		}
		prevEnd = e.off + e.size
		placed++
	}

	recent := 0
	for s := c.pool[head].lruNext; s != head; s = c.pool[s].lruNext {
		if s < 0 || int(s) >= len(c.pool) || recent >= len(c.pool) {
			return &hunk.ValidationError{Type: "CacheLRU", Message: fmt.Sprintf("recency ring reaches bad slot %d", s), Offset: -1}
		}
		e := &c.pool[s]
		if !e.live {
			return &hunk.ValidationError{Type: "CacheLRU", Message: fmt.Sprintf("slot %d is recent but not live", s), Offset: e.off}
		}
		if c.pool[e.lruNext].lruPrev != s {
			return &hunk.ValidationError{Type: "CacheLRU", Message: "recency link has no proper back link", Offset: e.off}
		}
		recent++
	}
	if placed != recent {
		return &hunk.ValidationError{
			Type:    "CacheLRU",
			Message: fmt.Sprintf("%d entries placed but %d in the recency ring", placed, recent),
			Offset:  -1,
		}
	}
	return nil
}

// Check validates the cache; corruption is fatal.
func (c *Cache) Check() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.validate(); err != nil {
		c.con.Fatal(fmt.Errorf("Check: %w: %w", ErrCorrupt, err))
	}
}

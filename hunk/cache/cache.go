package cache

import (
	"fmt"

	"github.com/joshuapare/hunkkit/console"
	"github.com/joshuapare/hunkkit/hunk"
	"github.com/joshuapare/hunkkit/internal/buf"
	"github.com/joshuapare/hunkkit/internal/format"
	"github.com/joshuapare/hunkkit/internal/ticket"
)

// ID is a caller-owned handle to a cache entry. The zero ID names nothing.
type ID struct {
	slot int32
	gen  uint32
}

// IsZero reports whether id names no entry.
func (id ID) IsZero() bool { return id.slot == 0 }

// head is the pool slot of the sentinel shared by both rings.
const head int32 = 0

// entry is the out-of-arena bookkeeping for one placement.
type entry struct {
	off  int // header offset in the arena
	size int // header-inclusive, aligned
	want int // payload length requested by the caller

	id   *ID
	gen  uint32
	live bool

	// placement ring, address ordered
	next, prev int32
	// recency ring; head.lruNext is the most recently used entry
	lruNext, lruPrev int32
}

// Cache is an LRU cache over the free gap of a Hunk.
type Cache struct {
	mu  ticket.Lock
	h   *hunk.Hunk
	con *console.Console
	mem []byte

	pool      []entry
	freeSlots []int32

	// Marks the last eviction pass cleared. A mark the hunk has published
	// but not yet handed to FreeLow or FreeHigh is not trusted by validate.
	clearedLow, clearedHigh int

	allocs    uint64
	frees     uint64
	evictions uint64
	moves     uint64
}

var (
	_ hunk.Evictor   = (*Cache)(nil)
	_ hunk.Checker   = (*Cache)(nil)
	_ hunk.Validator = (*Cache)(nil)
)

// New returns an empty cache over h's free gap. Register it with
// h.SetEvictor so hunk growth can reclaim the gap.
func New(h *hunk.Hunk) *Cache {
	c := &Cache{
		h:           h,
		con:         h.Console(),
		mem:         h.Bytes(),
		pool:        make([]entry, 1, 64),
		clearedLow:  h.LowMark(),
		clearedHigh: h.HighMark(),
	}
	c.con.Debug("cache initialized")
	return c
}

// resolve returns the slot id names, if it is live.
func (c *Cache) resolve(id ID) (int32, bool) {
	if id.slot <= head || int(id.slot) >= len(c.pool) {
		return 0, false
	}
	e := &c.pool[id.slot]
	if !e.live || e.gen != id.gen {
		return 0, false
	}
	return id.slot, true
}

// Alloc places a zeroed entry of size bytes and writes its identity to *id.
// Least recently used entries are evicted until the request fits. Running out
// of entries to evict is fatal.
func (c *Cache) Alloc(id *ID, size int, name string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == nil || size <= 0 {
		c.con.Fatal(fmt.Errorf("Alloc: %w: nil id or size %d", ErrBadParams, size))
		return nil
	}
	if _, ok := c.resolve(*id); ok {
		c.con.Fatal(fmt.Errorf("Alloc: %w: %q", ErrAlreadyAllocated, name))
		return nil
	}
	if name == "" {
		name = hunk.DefaultName
	}

	need, ok := buf.AddOverflowSafe(size, format.HeaderSize+format.HunkAlignMask)
	if !ok {
		c.con.Fatal(fmt.Errorf("Alloc: %w: size %d", ErrNoMemory, size))
		return nil
	}
	need &^= format.HunkAlignMask

	var s int32
	for {
		if s, ok = c.tryAlloc(need, false); ok {
			break
		}
		// find the least recently used entry
		lru := c.pool[head].lruPrev
		if lru == head {
			lo, hi := c.h.Bounds()
			c.con.Fatal(fmt.Errorf("Alloc: %w: %d bytes requested, gap is %d", ErrNoMemory, need, hi-lo))
			return nil
		}
		c.evict(lru)
	}

	e := &c.pool[s]
	e.want = size
	e.id = id
	hdr := format.WriteHeader(c.mem, e.off, format.CacheSentinel, need, name)
	clear(c.mem[hdr.PayloadOffset():hdr.End()])
	c.makeMRU(s)
	c.allocs++

	*id = ID{slot: s, gen: e.gen}
	return hdr.Payload(size)
}

// Free drops the entry *id names and zeroes *id.
func (c *Cache) Free(id *ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == nil {
		c.con.Fatal(fmt.Errorf("Free: %w: nil id", ErrBadParams))
		return
	}
	s, ok := c.resolve(*id)
	if !ok {
		c.con.Fatal(fmt.Errorf("Free: %w: %+v", ErrBadID, *id))
		return
	}
	c.remove(s)
	*id = ID{}
	c.frees++
}

// Data returns the payload id names. It does not change recency.
func (c *Cache) Data(id ID) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.resolve(id)
	if !ok {
		return nil, false
	}
	e := &c.pool[s]
	p := e.off + format.HeaderSize
	return c.mem[p : p+e.want : p+e.want], true
}

// Flush evicts every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.pool[head].next != head {
		c.evict(c.pool[head].next)
	}
}

// evict drops s and zeroes its owner's identity slot.
func (c *Cache) evict(s int32) {
	e := &c.pool[s]
	c.con.Debug("cache evict", "name", format.Header{Mem: c.mem, Off: e.off}.Name(), "size", e.size)
	if e.id != nil {
		*e.id = ID{}
	}
	c.remove(s)
	c.evictions++
}

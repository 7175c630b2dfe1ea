package cache

import "github.com/joshuapare/hunkkit/internal/format"

// Entry describes one live cache entry.
type Entry struct {
	ID     ID
	Offset int
	Size   int // header included
	Name   string
}

// Stats summarises cache activity.
type Stats struct {
	Entries   int
	Bytes     int
	Allocs    uint64
	Frees     uint64
	Evictions uint64
	Moves     uint64
}

func (c *Cache) describe(s int32) Entry {
	e := &c.pool[s]
	return Entry{
		ID:     ID{slot: s, gen: e.gen},
		Offset: e.off,
		Size:   e.size,
		Name:   format.Header{Mem: c.mem, Off: e.off}.Name(),
	}
}

// Entries lists live entries in address order.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Entry
	for s := c.pool[head].next; s != head; s = c.pool[s].next {
		out = append(out, c.describe(s))
	}
	return out
}

// Recency lists live entries from most to least recently used.
func (c *Cache) Recency() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Entry
	for s := c.pool[head].lruNext; s != head; s = c.pool[s].lruNext {
		out = append(out, c.describe(s))
	}
	return out
}

// Stats returns current occupancy and lifetime counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{
		Allocs:    c.allocs,
		Frees:     c.frees,
		Evictions: c.evictions,
		Moves:     c.moves,
	}
	for s := c.pool[head].next; s != head; s = c.pool[s].next {
		st.Entries++
		st.Bytes += c.pool[s].size
	}
	return st
}

// Print writes one "name: size" line per entry in address order.
func (c *Cache) Print() {
	entries := c.Entries()
	var total int
	for _, e := range entries {
		c.con.Printf("%s: %d", e.Name, e.Size)
		total += e.Size
	}
	c.con.Printf("cache entries: %d", len(entries))
	c.con.Printf("cache bytes: %d", total)
}

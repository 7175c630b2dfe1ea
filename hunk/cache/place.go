package cache

// newSlot returns a live pool slot with a fresh generation.
func (c *Cache) newSlot() int32 {
	var s int32
	if n := len(c.freeSlots); n > 0 {
		s = c.freeSlots[n-1]
		c.freeSlots = c.freeSlots[:n-1]
	} else {
		c.pool = append(c.pool, entry{})
		s = int32(len(c.pool) - 1)
	}
	e := &c.pool[s]
	*e = entry{gen: e.gen + 1, live: true}
	return s
}

// remove unlinks s from both rings and recycles its slot.
func (c *Cache) remove(s int32) {
	e := &c.pool[s]
	c.pool[e.prev].next = e.next
	c.pool[e.next].prev = e.prev
	c.unlinkLRU(s)
	e.live = false
	e.id = nil
	c.freeSlots = append(c.freeSlots, s)
}

// linkBefore inserts s into the placement ring ahead of at.
func (c *Cache) linkBefore(s, at int32) {
	prev := c.pool[at].prev
	c.pool[s].next = at
	c.pool[s].prev = prev
	c.pool[prev].next = s
	c.pool[at].prev = s
}

func (c *Cache) makeMRU(s int32) {
	first := c.pool[head].lruNext
	c.pool[s].lruNext = first
	c.pool[s].lruPrev = head
	c.pool[first].lruPrev = s
	c.pool[head].lruNext = s
}

func (c *Cache) unlinkLRU(s int32) {
	e := &c.pool[s]
	c.pool[e.lruNext].lruPrev = e.lruPrev
	c.pool[e.lruPrev].lruNext = e.lruNext
	e.lruNext, e.lruPrev = 0, 0
}

// tryAlloc places size bytes in the first gap that fits, scanning from the
// bottom of the hunk's free gap up. With noBottom the gap below the first
// entry is skipped. The new slot is linked into the placement ring only.
func (c *Cache) tryAlloc(size int, noBottom bool) (int32, bool) {
	lo, hi := c.h.Bounds()
	// A popped mark is cleared as soon as anything may be placed behind it.
	c.clearedLow = min(c.clearedLow, lo)
	c.clearedHigh = min(c.clearedHigh, len(c.mem)-hi)

	at, off, found := head, 0, false
	gapStart := lo
	first := c.pool[head].next
	for s := first; s != head; s = c.pool[s].next {
		e := &c.pool[s]
		if !noBottom || s != first {
			start, end := max(gapStart, lo), min(e.off, hi)
			if end-start >= size {
				at, off, found = s, start, true
				break
			}
		}
		gapStart = max(gapStart, e.off+e.size)
	}
	if !found {
		// try the very end
		start := max(gapStart, lo)
		if hi-start < size {
			return 0, false
		}
		at, off = head, start
	}

	s := c.newSlot()
	c.pool[s].off = off
	c.pool[s].size = size
	c.linkBefore(s, at)
	return s, true
}

// move relocates s elsewhere in the gap, or evicts it when nothing fits.
func (c *Cache) move(s int32) {
	old := c.pool[s]
	ns, ok := c.tryAlloc(old.size, true)
	if !ok {
		c.evict(s)
		return
	}
	n := &c.pool[ns]
	copy(c.mem[n.off:n.off+old.size], c.mem[old.off:old.off+old.size])
	n.want = old.want
	n.id = old.id
	c.remove(s)
	c.makeMRU(ns)
	if n.id != nil {
		*n.id = ID{slot: ns, gen: n.gen}
	}
	c.moves++
	c.con.Debug("cache move", "from", old.off, "to", n.off, "size", old.size)
}

// FreeLow moves or evicts entries below mark so the low stack can grow to it.
// It is called by the hunk after the new low mark is published.
func (c *Cache) FreeLow(mark int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var last *ID
	for {
		s := c.pool[head].next
		if s == head {
			break // nothing in cache at all
		}
		e := &c.pool[s]
		if e.off >= mark {
			break // there is space to grow the hunk
		}
		// move only places inside the published gap, so an entry never
		// blocks twice; this stops the loop should that ever break.
		if e.id == last {
			c.evict(s) // didn't move out of the way
			continue
		}
		last = e.id
		c.move(s)
	}
	c.clearedLow = mark
}

// FreeHigh moves or evicts entries in the top mark bytes of the arena so the
// high stack can grow to mark.
func (c *Cache) FreeHigh(mark int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	limit := len(c.mem) - mark
	var last *ID
	for {
		s := c.pool[head].prev
		if s == head {
			break
		}
		e := &c.pool[s]
		if e.off+e.size <= limit {
			break
		}
		// Same guard as FreeLow, keyed by owner since a move changes the ID.
		if e.id == last {
			c.evict(s)
			continue
		}
		last = e.id
		c.move(s)
	}
	c.clearedHigh = mark
}

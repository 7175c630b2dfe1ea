// Package cache implements an evictable, relocatable LRU cache that lives in
// the free gap between a Hunk's low and high marks.
//
// # Placement
//
// Entries are laid out in the arena in address order, each with a 48-byte
// header (sentinel 0x1dca3e5a, size, name) followed by its payload. Free space
// is implicit: the gaps are the distances between consecutive entries and
// between the entries and the hunk's marks. Placement is first fit over those
// gaps from the bottom up.
//
// # Identity
//
// Callers own an ID and pass its address to Alloc. The cache writes the
// entry's identity into it, rewrites it when the entry is relocated, and
// zeroes it when the entry is freed or evicted. Resolve the current payload
// with Data; slices returned earlier go stale after a relocation.
//
//	var id cache.ID
//	buf := c.Alloc(&id, len(sound), "sound/door.wav")
//	copy(buf, sound)
//	...
//	if data, ok := c.Data(id); ok {
//	    play(data)
//	} else {
//	    // evicted, reload it
//	}
//
// # Eviction
//
// When no gap fits, Alloc evicts least recently used entries until one does.
// When the hunk grows into the gap it calls FreeLow or FreeHigh, which move the
// entries in the way elsewhere or evict them. Cached data must always be
// reconstructible by its owner.
//
// # Thread Safety
//
// Every public method holds the cache's ticket lock. The cache reads the
// hunk's bounds without taking the hunk's lock, so a hunk growing under its
// own lock may call FreeLow and FreeHigh.
package cache

package zone

import "github.com/joshuapare/hunkkit/internal/format"

// Block describes one block of the ring, excluding the sentinel.
type Block struct {
	Offset int
	Size   int
	// Capacity is the payload space between the header and the trash tester.
	Capacity int
	Used     bool
}

// Stats summarises zone usage.
type Stats struct {
	Size         int
	UsedBytes    int
	FreeBytes    int
	UsedBlocks   int
	FreeBlocks   int
	LargestFree  int
	Allocs       uint64
	Frees        uint64
	FailedAllocs uint64
}

// Blocks lists the ring in address order.
func (z *Zone) Blocks() []Block {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.blocks()
}

func (z *Zone) blocks() []Block {
	var out []Block
	for off := z.block(sentinelOff).Next(); off != sentinelOff; {
		b := z.block(off)
		if b.Sentinel() != format.ZoneSentinel || b.Size() < minBlock || b.End() > len(z.mem) {
			break
		}
		out = append(out, Block{Offset: off, Size: b.Size(), Capacity: b.Capacity(), Used: b.Used()})
		off = b.Next()
	}
	return out
}

// Stats returns current usage.
func (z *Zone) Stats() Stats {
	z.mu.Lock()
	defer z.mu.Unlock()

	st := Stats{
		Size:         len(z.mem),
		UsedBytes:    format.ZoneHeaderSize,
		Allocs:       z.allocs,
		Frees:        z.frees,
		FailedAllocs: z.failed,
	}
	for _, b := range z.blocks() {
		if b.Used {
			st.UsedBlocks++
			st.UsedBytes += b.Size
			continue
		}
		st.FreeBlocks++
		st.FreeBytes += b.Size
		st.LargestFree = max(st.LargestFree, b.Size)
	}
	return st
}

// Print writes one "used: size" or "free: size" line per block, then totals.
func (z *Zone) Print() {
	z.mu.Lock()
	blocks := z.blocks()
	z.mu.Unlock()

	var used, free int
	for _, b := range blocks {
		if b.Used {
			used += b.Size
			z.con.Printf("used: %d", b.Size)
		} else {
			free += b.Size
			z.con.Printf("free: %d", b.Size)
		}
	}
	z.con.Printf("zone used: %d", used)
	z.con.Printf("zone free: %d", free)
	z.con.Printf("zone size: %d", len(z.mem))
}

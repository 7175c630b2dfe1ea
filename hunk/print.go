package hunk

import (
	"github.com/joshuapare/hunkkit/internal/format"
)

// End identifies which stack a block belongs to.
type End int

const (
	Low End = iota
	High
)

func (e End) String() string {
	if e == High {
		return "high"
	}
	return "low"
}

// Allocation describes one live block.
type Allocation struct {
	End    End
	Offset int
	Size   int // header included
	Name   string
}

// Stats summarises arena usage.
type Stats struct {
	Size       int
	Low        int
	High       int
	Free       int
	LowBlocks  int
	HighBlocks int
	LowAllocs  uint64
	HighAllocs uint64
}

// Allocations lists live blocks, low blocks bottom-up then high blocks from
// the most recent to the oldest. The walk stops at the first corrupted header.
func (h *Hunk) Allocations() []Allocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocations()
}

func (h *Hunk) allocations() []Allocation {
	var out []Allocation
	size := len(h.data)
	low, high := int(h.low.Load()), int(h.high.Load())
	out = h.collect(out, Low, 0, low)
	return h.collect(out, High, size-high, size)
}

func (h *Hunk) collect(out []Allocation, end End, start, limit int) []Allocation {
	for off := start; off < limit; {
		hdr, err := format.HeaderAt(h.data, off, format.HunkSentinel)
		if err != nil || hdr.Size() < format.MinHunkBlock || hdr.Size() > limit-off {
			break
		}
		out = append(out, Allocation{End: end, Offset: off, Size: hdr.Size(), Name: hdr.Name()})
		off += hdr.Size()
	}
	return out
}

// Stats returns current usage.
func (h *Hunk) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := Stats{
		Size:       len(h.data),
		Low:        int(h.low.Load()),
		High:       int(h.high.Load()),
		LowAllocs:  h.lowAllocs,
		HighAllocs: h.highAllocs,
	}
	st.Free = st.Size - st.Low - st.High
	for _, a := range h.allocations() {
		if a.End == Low {
			st.LowBlocks++
		} else {
			st.HighBlocks++
		}
	}
	return st
}

// Print writes the block inventory as "name: size" lines, low blocks first.
// Consecutive blocks sharing a name are summed into one line unless
// everyAlloc is set.
func (h *Hunk) Print(everyAlloc bool) {
	h.mu.Lock()
	allocs := h.allocations()
	size, low, high := len(h.data), int(h.low.Load()), int(h.high.Load())
	h.mu.Unlock()

	con := h.con
	for i := 0; i < len(allocs); {
		a := allocs[i]
		total, n := a.Size, 1
		if !everyAlloc {
			for i+n < len(allocs) && allocs[i+n].End == a.End && allocs[i+n].Name == a.Name {
				total += allocs[i+n].Size
				n++
			}
		}
		if n > 1 {
			con.Printf("%s %s: %d (%d blocks)", a.End, a.Name, total, n)
		} else {
			con.Printf("%s %s: %d", a.End, a.Name, total)
		}
		i += n
	}
	con.Printf("low: %d", low)
	con.Printf("high: %d", high)
	con.Printf("free: %d", size-low-high)
	con.Printf("total: %d", size)
}

package hunk

import (
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/hunkkit/console"
	"github.com/joshuapare/hunkkit/internal/buf"
	"github.com/joshuapare/hunkkit/internal/format"
	"github.com/joshuapare/hunkkit/internal/ticket"
)

// DefaultName is stored for allocations made with an empty name.
const DefaultName = "unknown"

// Evictor clears the range a growing stack is about to claim.
//
// FreeLow is called after the low mark has advanced to mark; on return no
// foreign data may remain below mark. FreeHigh is the mirror image for the
// last mark bytes of the arena.
type Evictor interface {
	FreeLow(mark int)
	FreeHigh(mark int)
}

// Checker validates a tier and reports corruption through the fatal path.
// Check is called with the hunk lock held, so it must not allocate or pop.
type Checker interface {
	Check()
}

// Validator validates a tier and reports corruption as an error.
type Validator interface {
	Validate() error
}

// Options tunes a Hunk.
type Options struct {
	// Paranoid validates both stacks every format.CheckInterval allocations.
	Paranoid bool
}

// Hunk is a double-ended stack allocator over a fixed arena.
type Hunk struct {
	mu   ticket.Lock
	data []byte
	con  *console.Console
	opts Options

	// low and high are the bytes in use at each end. They are written only
	// under mu and published atomically so Bounds can be read lock-free.
	low  atomic.Int64
	high atomic.Int64

	evictor  Evictor
	checkers []Checker

	// counter drives the paranoid validation cadence.
	counter int

	lowAllocs  uint64
	highAllocs uint64
}

// New returns a Hunk managing data. A nil console selects console.Default.
// An empty arena is fatal.
func New(data []byte, con *console.Console, opts Options) *Hunk {
	if con == nil {
		con = console.Default()
	}
	if len(data) == 0 {
		con.Fatal(fmt.Errorf("New: %w: empty arena", ErrBadParams))
		return nil
	}
	h := &Hunk{data: data, con: con, opts: opts}
	con.Debug("hunk initialized", "size", len(data), "paranoid", opts.Paranoid)
	return h
}

// SetEvictor registers the tier that yields space to stack growth.
func (h *Hunk) SetEvictor(e Evictor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evictor = e
}

// AddChecker registers tiers to be validated by Check.
func (h *Hunk) AddChecker(cs ...Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, cs...)
}

// Console returns the diagnostics sink shared with co-resident tiers.
func (h *Hunk) Console() *console.Console { return h.con }

// Bytes returns the whole arena. Co-resident tiers address it by offset.
func (h *Hunk) Bytes() []byte { return h.data }

// Size returns the arena size in bytes.
func (h *Hunk) Size() int { return len(h.data) }

// LowMark returns the bytes in use at the low end.
func (h *Hunk) LowMark() int { return int(h.low.Load()) }

// HighMark returns the bytes in use at the high end.
func (h *Hunk) HighMark() int { return int(h.high.Load()) }

// Bounds returns the free gap [lo, hi) between the two stacks.
func (h *Hunk) Bounds() (lo, hi int) {
	return int(h.low.Load()), len(h.data) - int(h.high.Load())
}

// LowAlloc allocates size zeroed bytes at the low end.
func (h *Hunk) LowAlloc(size int, name string) []byte {
	return h.alloc("LowAlloc", size, name, false)
}

// HighAlloc allocates size zeroed bytes at the high end.
func (h *Hunk) HighAlloc(size int, name string) []byte {
	return h.alloc("HighAlloc", size, name, true)
}

func (h *Hunk) alloc(op string, size int, name string, high bool) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	if size <= 0 {
		h.con.Fatal(fmt.Errorf("%s: %w: size %d", op, ErrBadParams, size))
		return nil
	}
	if name == "" {
		name = DefaultName
	}
	h.paranoid(op)

	block, ok := buf.AddOverflowSafe(format.HeaderSize, format.Align16(size))
	low, used := h.low.Load(), h.high.Load()
	free := int64(len(h.data)) - low - used
	if !ok || size > len(h.data) || int64(block) > free {
		h.con.Fatal(fmt.Errorf("%s: %w: need %d bytes, %d free, try starting with -megs",
			op, ErrNoSpace, block, free))
		return nil
	}

	// Publish the new mark before evicting so no concurrent cache placement
	// lands in the claimed range, then clear it.
	var off int
	if high {
		used += int64(block)
		off = len(h.data) - int(used)
		h.high.Store(used)
		if h.evictor != nil {
			h.evictor.FreeHigh(int(used))
		}
		h.highAllocs++
	} else {
		off = int(low)
		low += int64(block)
		h.low.Store(low)
		if h.evictor != nil {
			h.evictor.FreeLow(int(low))
		}
		h.lowAllocs++
	}

	clear(h.data[off : off+block])
	hdr := format.WriteHeader(h.data, off, format.HunkSentinel, block, name)
	return hdr.Payload(size)
}

// paranoid validates the arena every format.CheckInterval allocations.
func (h *Hunk) paranoid(op string) {
	if !h.opts.Paranoid {
		return
	}
	h.counter++
	if h.counter < format.CheckInterval {
		return
	}
	h.counter = 0
	if err := h.validate(); err != nil {
		h.con.Fatal(fmt.Errorf("%s: %w: %w", op, ErrCorrupt, err))
	}
}

// LowPop releases the most recent low allocation.
func (h *Hunk) LowPop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	low := int(h.low.Load())
	if low == 0 {
		h.con.Fatal(fmt.Errorf("LowPop: %w: low stack is empty", ErrBadMark))
		return
	}
	// Low headers are only reachable by walking up from the base.
	off := 0
	for {
		hdr, err := format.HeaderAt(h.data, off, format.HunkSentinel)
		if err != nil {
			h.con.Fatal(fmt.Errorf("LowPop: %w: %w", ErrCorrupt, err))
			return
		}
		end := hdr.End()
		if hdr.Size() < format.MinHunkBlock || end > low {
			h.con.Fatal(fmt.Errorf("LowPop: %w: block at %d has bad size %d", ErrCorrupt, off, hdr.Size()))
			return
		}
		if end == low {
			break
		}
		off = end
	}
	h.low.Store(int64(off))
}

// HighPop releases the most recent high allocation.
func (h *Hunk) HighPop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	high := int(h.high.Load())
	if high == 0 {
		h.con.Fatal(fmt.Errorf("HighPop: %w: high stack is empty", ErrBadMark))
		return
	}
	off := len(h.data) - high
	hdr, err := format.HeaderAt(h.data, off, format.HunkSentinel)
	if err != nil {
		h.con.Fatal(fmt.Errorf("HighPop: %w: %w", ErrCorrupt, err))
		return
	}
	if hdr.Size() < format.MinHunkBlock || hdr.Size() > high {
		h.con.Fatal(fmt.Errorf("HighPop: %w: block at %d has bad size %d", ErrCorrupt, off, hdr.Size()))
		return
	}
	h.high.Store(int64(high - hdr.Size()))
}

// LowPopToMark rewinds the low end to mark, a value previously returned by LowMark.
func (h *Hunk) LowPopToMark(mark int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if mark < 0 || int64(mark) > h.low.Load() {
		h.con.Fatal(fmt.Errorf("LowPopToMark: %w %d (low mark is %d)", ErrBadMark, mark, h.low.Load()))
		return
	}
	h.low.Store(int64(mark))
}

// HighPopToMark rewinds the high end to mark, a value previously returned by HighMark.
func (h *Hunk) HighPopToMark(mark int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if mark < 0 || int64(mark) > h.high.Load() {
		h.con.Fatal(fmt.Errorf("HighPopToMark: %w %d (high mark is %d)", ErrBadMark, mark, h.high.Load()))
		return
	}
	h.high.Store(int64(mark))
}

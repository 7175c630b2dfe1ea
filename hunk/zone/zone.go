package zone

import (
	"fmt"
	"math"

	"github.com/joshuapare/hunkkit/console"
	"github.com/joshuapare/hunkkit/hunk"
	"github.com/joshuapare/hunkkit/internal/buf"
	"github.com/joshuapare/hunkkit/internal/format"
	"github.com/joshuapare/hunkkit/internal/ticket"
)

// Ref is the offset of a payload within the zone. The zero Ref is nil.
type Ref uint32

const (
	// minBlock is the smallest block that can hold a one-byte payload.
	minBlock = (format.ZoneOverhead + 1 + format.ZoneAlignMask) &^ format.ZoneAlignMask

	// minRegion fits the sentinel block and one minimal block.
	minRegion = format.ZoneHeaderSize + minBlock

	sentinelOff = 0
	firstOff    = format.ZoneHeaderSize
)

// Options selects the backing size and split policy.
type Options struct {
	// OverrideMegs is the -zmegs value in MiB. It wins over every other size.
	OverrideMegs int
	// Size is an explicit backing size in bytes.
	Size int
	// Fraction of the arena used when neither OverrideMegs nor Size is set.
	// Zero selects format.DefaultZoneFraction.
	Fraction float64
	// MinFragment is the surplus a block must exceed to be split.
	// format.UseDefault selects format.DefaultMinFragment.
	MinFragment int
	// Paranoid validates the ring every format.CheckInterval allocations.
	Paranoid bool
}

// DefaultOptions returns options that take 30% of the arena with the default
// fragment threshold.
func DefaultOptions() Options {
	return Options{
		Fraction:    format.DefaultZoneFraction,
		MinFragment: format.UseDefault,
	}
}

// Zone is a first-fit heap over a region carved from a Hunk.
type Zone struct {
	mu  ticket.Lock
	con *console.Console
	mem []byte

	minFrag  int
	paranoid bool
	counter  int

	// rover is the block the next scan starts at.
	rover int

	allocs uint64
	frees  uint64
	failed uint64
}

// New carves the zone's backing region from h with one low allocation named
// "zone".
func New(h *hunk.Hunk, opts Options) *Zone {
	con := h.Console()

	size, err := backingSize(h.Size(), opts)
	if err != nil {
		con.Fatal(fmt.Errorf("New: %w", err))
		return nil
	}
	minFrag := opts.MinFragment
	switch {
	case minFrag == format.UseDefault:
		minFrag = format.DefaultMinFragment
	case minFrag < 0:
		con.Fatal(fmt.Errorf("New: %w: min fragment %d", ErrBadParams, minFrag))
		return nil
	}

	region := h.LowAlloc(size, "zone")
	z := &Zone{
		con:      con,
		mem:      region[:format.AlignDown8(size)],
		minFrag:  minFrag,
		paranoid: opts.Paranoid,
		rover:    firstOff,
	}
	format.InitZoneBlock(z.mem, sentinelOff, format.ZoneHeaderSize, firstOff, firstOff, format.ZoneTagUsed)
	format.InitZoneBlock(z.mem, firstOff, len(z.mem)-firstOff, sentinelOff, sentinelOff, format.ZoneTagFree)

	con.Debug("zone initialized", "size", len(z.mem), "minfrag", minFrag)
	return z
}

// backingSize resolves OverrideMegs > Size > Fraction of the arena.
func backingSize(arena int, opts Options) (int, error) {
	var size int
	switch {
	case opts.OverrideMegs < 0 || opts.Size < 0 || opts.Fraction < 0 || opts.Fraction >= 1:
		return 0, fmt.Errorf("%w: megs=%d size=%d fraction=%g",
			ErrBadParams, opts.OverrideMegs, opts.Size, opts.Fraction)
	case opts.OverrideMegs > 0:
		if opts.OverrideMegs > math.MaxInt/format.Megabyte {
			return 0, fmt.Errorf("%w: -zmegs %d overflows", ErrBadParams, opts.OverrideMegs)
		}
		size = opts.OverrideMegs * format.Megabyte
	case opts.Size > 0:
		size = opts.Size
	default:
		fraction := opts.Fraction
		if fraction == 0 {
			fraction = format.DefaultZoneFraction
		}
		size = int(float64(arena) * fraction)
	}
	if size > math.MaxUint32 {
		return 0, fmt.Errorf("%w: backing size %d exceeds 32-bit offsets", ErrBadParams, size)
	}
	if format.AlignDown8(size) < minRegion {
		return 0, fmt.Errorf("%w: backing size %d is below %d", ErrBadParams, size, minRegion)
	}
	return size, nil
}

func (z *Zone) block(off int) format.ZoneBlock {
	return format.ZoneBlock{Mem: z.mem, Off: off}
}

// Alloc returns a zeroed payload of size bytes, or a zero Ref and nil when no
// free block is large enough.
func (z *Zone) Alloc(size int) (Ref, []byte) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if size <= 0 {
		z.con.Fatal(fmt.Errorf("Alloc: %w: size %d", ErrBadParams, size))
		return 0, nil
	}
	z.checkParanoid()

	// Header, trash tester and padding are folded in once.
	need, ok := buf.AddOverflowSafe(size, format.ZoneOverhead+format.ZoneAlignMask)
	if !ok || need > len(z.mem) {
		z.failed++
		return 0, nil
	}
	need &^= format.ZoneAlignMask

	start := z.rover
	b := z.block(start)
	for b.Used() || b.Size() < need {
		b = z.block(b.Next())
		if b.Off == start {
			// scanned all the way around the ring
			z.failed++
			z.con.Debug("zone alloc failed", "size", size, "need", need)
			return 0, nil
		}
	}

	if extra := b.Size() - need; extra > z.minFrag && extra >= minBlock {
		// there will be a free fragment after the allocated block
		fragOff := b.Off + need
		next := b.Next()
		format.InitZoneBlock(z.mem, fragOff, extra, b.Off, next, format.ZoneTagFree)
		z.block(next).SetPrev(fragOff)
		b.SetNext(fragOff)
		b.SetSize(need)
	}

	b.SetTag(format.ZoneTagUsed)
	b.SetTrash()
	payload := b.PayloadOffset()
	clear(z.mem[payload : payload+b.Capacity()])

	// next allocation will start looking here
	z.rover = b.Next()
	z.allocs++

	ref := b.PayloadOffset()
	return Ref(ref), z.mem[ref : ref+size : ref+size]
}

func (z *Zone) checkParanoid() {
	if !z.paranoid {
		return
	}
	z.counter++
	if z.counter < format.CheckInterval {
		return
	}
	z.counter = 0
	if err := z.validate(); err != nil {
		z.con.Fatal(fmt.Errorf("Alloc: %w: %w", ErrCorrupt, err))
	}
}

// usedBlock resolves ref to its block header, reporting misuse fatally.
func (z *Zone) usedBlock(op string, ref Ref) (format.ZoneBlock, bool) {
	off := int(ref) - format.ZoneHeaderSize
	if off < firstOff {
		z.con.Fatal(fmt.Errorf("%s: %w: ref %d", op, ErrBadPointer, ref))
		return format.ZoneBlock{}, false
	}
	b, err := format.ZoneBlockAt(z.mem, off)
	if err != nil {
		z.con.Fatal(fmt.Errorf("%s: %w: %w", op, ErrBadPointer, err))
		return format.ZoneBlock{}, false
	}
	if b.Size() < minBlock || b.Size() > len(z.mem)-off {
		z.con.Fatal(fmt.Errorf("%s: %w: block at %d has bad size %d", op, ErrBadPointer, off, b.Size()))
		return format.ZoneBlock{}, false
	}
	if !b.Used() {
		z.con.Fatal(fmt.Errorf("%s: %w: ref %d", op, ErrDoubleFree, ref))
		return format.ZoneBlock{}, false
	}
	if b.Trash() != format.ZoneSentinel {
		z.con.Fatal(fmt.Errorf("%s: %w: block at %d", op, ErrTrashed, off))
		return format.ZoneBlock{}, false
	}
	return b, true
}

// Free releases the block at ref and merges it with free neighbours.
func (z *Zone) Free(ref Ref) {
	z.mu.Lock()
	defer z.mu.Unlock()

	b, ok := z.usedBlock("Free", ref)
	if !ok {
		return
	}
	b.SetTag(format.ZoneTagFree)
	z.frees++

	// The sentinel is always used, so neither merge crosses the ring head.
	if prev := z.block(b.Prev()); !prev.Used() {
		prev.SetSize(prev.Size() + b.Size())
		prev.SetNext(b.Next())
		z.block(b.Next()).SetPrev(prev.Off)
		if z.rover == b.Off {
			z.rover = prev.Off
		}
		b = prev
	}
	if next := z.block(b.Next()); !next.Used() {
		b.SetSize(b.Size() + next.Size())
		b.SetNext(next.Next())
		z.block(next.Next()).SetPrev(b.Off)
		if z.rover == next.Off {
			z.rover = b.Off
		}
	}
}

// Bytes re-resolves ref to its whole payload, which is at least as long as
// the size requested from Alloc.
func (z *Zone) Bytes(ref Ref) []byte {
	z.mu.Lock()
	defer z.mu.Unlock()

	b, ok := z.usedBlock("Bytes", ref)
	if !ok {
		return nil
	}
	payload := b.PayloadOffset()
	end := payload + b.Capacity()
	return z.mem[payload:end:end]
}

// Size returns the usable backing size in bytes.
func (z *Zone) Size() int { return len(z.mem) }

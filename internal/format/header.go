package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/hunkkit/internal/buf"
)

// Header is a view of a hunk or cache header at Off within Mem.
//
// The payload begins at Off+HeaderSize and runs to Off+Size().
type Header struct {
	Mem []byte
	Off int
}

// HeaderAt decodes the header at off and checks its sentinel.
func HeaderAt(mem []byte, off int, sentinel uint32) (Header, error) {
	if !buf.Has(mem, off, HeaderSize) {
		return Header{}, fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	h := Header{Mem: mem, Off: off}
	if got := h.Sentinel(); got != sentinel {
		return Header{}, fmt.Errorf("header at %d: %w (got 0x%08x)", off, ErrSignatureMismatch, got)
	}
	return h, nil
}

// WriteHeader zeroes the header bytes at off and writes sentinel, size and name.
// Names longer than NameSize-1 bytes are truncated.
func WriteHeader(mem []byte, off int, sentinel uint32, size int, name string) Header {
	hdr := mem[off : off+HeaderSize]
	clear(hdr)
	PutU32(hdr, HeaderSentinelOffset, sentinel)
	PutU64(hdr, HeaderSizeOffset, uint64(size))
	if len(name) > NameSize-1 {
		name = name[:NameSize-1]
	}
	copy(hdr[HeaderNameOffset:], name)
	return Header{Mem: mem, Off: off}
}

// Sentinel returns the raw sentinel word.
func (h Header) Sentinel() uint32 { return ReadU32(h.Mem, h.Off+HeaderSentinelOffset) }

// Size returns the header-inclusive block size.
func (h Header) Size() int { return int(ReadU64(h.Mem, h.Off+HeaderSizeOffset)) }

// End returns the offset just past the block.
func (h Header) End() int { return h.Off + h.Size() }

// Name returns the stored name up to the first NUL.
func (h Header) Name() string {
	raw := h.Mem[h.Off+HeaderNameOffset : h.Off+HeaderNameOffset+NameSize]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// PayloadOffset returns the offset of the first payload byte.
func (h Header) PayloadOffset() int { return h.Off + HeaderSize }

// Payload returns the first n payload bytes with capacity clipped to n.
func (h Header) Payload(n int) []byte {
	p := h.PayloadOffset()
	return h.Mem[p : p+n : p+n]
}

// ZoneBlock is a view of a zone block header at Off within Mem.
type ZoneBlock struct {
	Mem []byte
	Off int
}

// ZoneBlockAt returns the block at off after checking bounds and sentinel.
func ZoneBlockAt(mem []byte, off int) (ZoneBlock, error) {
	if off%ZoneAlignment != 0 || !buf.Has(mem, off, ZoneHeaderSize) {
		return ZoneBlock{}, fmt.Errorf("zone block at %d: %w", off, ErrTruncated)
	}
	b := ZoneBlock{Mem: mem, Off: off}
	if got := b.Sentinel(); got != ZoneSentinel {
		return ZoneBlock{}, fmt.Errorf("zone block at %d: %w (got 0x%08x)", off, ErrSignatureMismatch, got)
	}
	return b, nil
}

// InitZoneBlock zeroes the header at off and writes a complete block header.
func InitZoneBlock(mem []byte, off, size, prev, next int, tag uint32) ZoneBlock {
	clear(mem[off : off+ZoneHeaderSize])
	b := ZoneBlock{Mem: mem, Off: off}
	PutU32(mem, off+ZoneSentinelOffset, ZoneSentinel)
	b.SetTag(tag)
	b.SetSize(size)
	b.SetPrev(prev)
	b.SetNext(next)
	return b
}

func (b ZoneBlock) Sentinel() uint32 { return ReadU32(b.Mem, b.Off+ZoneSentinelOffset) }
func (b ZoneBlock) Tag() uint32      { return ReadU32(b.Mem, b.Off+ZoneTagOffset) }
func (b ZoneBlock) Used() bool       { return b.Tag() == ZoneTagUsed }
func (b ZoneBlock) Size() int        { return int(ReadU32(b.Mem, b.Off+ZoneSizeOffset)) }
func (b ZoneBlock) Prev() int        { return int(ReadU32(b.Mem, b.Off+ZonePrevOffset)) }
func (b ZoneBlock) Next() int        { return int(ReadU32(b.Mem, b.Off+ZoneNextOffset)) }
func (b ZoneBlock) End() int         { return b.Off + b.Size() }

func (b ZoneBlock) SetTag(tag uint32) { PutU32(b.Mem, b.Off+ZoneTagOffset, tag) }
func (b ZoneBlock) SetSize(n int)     { PutU32(b.Mem, b.Off+ZoneSizeOffset, uint32(n)) }
func (b ZoneBlock) SetPrev(off int)   { PutU32(b.Mem, b.Off+ZonePrevOffset, uint32(off)) }
func (b ZoneBlock) SetNext(off int)   { PutU32(b.Mem, b.Off+ZoneNextOffset, uint32(off)) }

// Trash returns the trailing trash tester word.
func (b ZoneBlock) Trash() uint32 { return ReadU32(b.Mem, b.End()-ZoneTrashSize) }

// SetTrash writes ZoneSentinel into the trailing trash tester.
func (b ZoneBlock) SetTrash() { PutU32(b.Mem, b.End()-ZoneTrashSize, ZoneSentinel) }

// PayloadOffset returns the offset of the first payload byte.
func (b ZoneBlock) PayloadOffset() int { return b.Off + ZoneHeaderSize }

// Capacity is the number of payload bytes before the trash tester.
func (b ZoneBlock) Capacity() int { return b.Size() - ZoneOverhead }

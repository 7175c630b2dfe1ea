package format

// ============================================================================
// Stack arena (hunk) header
// ============================================================================
//
// Every hunk allocation and every cache entry starts with a 48-byte header:
//
//	Offset  Size  Description
//	0x00    4     Sentinel (HunkSentinel or CacheSentinel)
//	0x04    4     Reserved, zero
//	0x08    8     Block size in bytes, header included
//	0x10    32    Name, NUL padded and truncated to NameSize-1 bytes
//
// The payload follows immediately and is 16-byte aligned.
const (
	// HunkAlignment is the payload alignment of hunk blocks and cache entries.
	HunkAlignment = 16

	// HunkAlignMask is HunkAlignment - 1.
	HunkAlignMask = HunkAlignment - 1

	// HunkSentinel marks an intact hunk block header.
	HunkSentinel uint32 = 0x4fba8fcd

	// CacheSentinel marks an intact cache entry header.
	CacheSentinel uint32 = 0x1dca3e5a

	HeaderSentinelOffset = 0x00
	HeaderSizeOffset     = 0x08
	HeaderNameOffset     = 0x10

	// NameSize is the fixed width of the name field.
	NameSize = 32

	// HeaderSize is the size of a hunk or cache header.
	HeaderSize = HeaderNameOffset + NameSize // 0x30

	// MinHunkBlock is the smallest well-formed hunk block: a header plus one
	// aligned payload unit.
	MinHunkBlock = HeaderSize + HunkAlignment

	// CheckInterval is how many allocations pass between paranoid validations.
	CheckInterval = 1024
)

// ============================================================================
// Zone (heap) block header
// ============================================================================
//
// Zone blocks are laid out back to back inside the zone's backing region:
//
//	Offset  Size  Description
//	0x00    4     Sentinel (ZoneSentinel)
//	0x04    4     Tag: ZoneTagFree or ZoneTagUsed
//	0x08    4     Block size, header and trash tester included
//	0x0C    4     Offset of the previous block in the ring
//	0x10    4     Offset of the next block in the ring
//	0x14    4     Reserved, zero
//
// A used block ends with a 4-byte trash tester holding ZoneSentinel.
const (
	// ZoneAlignment is the alignment of zone block offsets and sizes.
	ZoneAlignment = 8

	// ZoneAlignMask is ZoneAlignment - 1.
	ZoneAlignMask = ZoneAlignment - 1

	// ZoneSentinel marks an intact zone block header and trash tester.
	ZoneSentinel uint32 = 0xff0e1377

	ZoneTagFree uint32 = 0
	ZoneTagUsed uint32 = 1

	ZoneSentinelOffset = 0x00
	ZoneTagOffset      = 0x04
	ZoneSizeOffset     = 0x08
	ZonePrevOffset     = 0x0C
	ZoneNextOffset     = 0x10

	// ZoneHeaderSize is the size of a zone block header.
	ZoneHeaderSize = 0x18

	// ZoneTrashSize is the width of the trailing trash tester.
	ZoneTrashSize = 4

	// ZoneOverhead is the per-block bookkeeping cost before alignment.
	ZoneOverhead = ZoneHeaderSize + ZoneTrashSize

	// DefaultZoneFraction is the share of the arena handed to the zone when no
	// explicit size is given.
	DefaultZoneFraction = 0.3

	// DefaultMinFragment is the smallest leftover worth splitting off as a
	// separate free block.
	DefaultMinFragment = 64

	// UseDefault asks a tier to pick its built-in default for a tunable.
	UseDefault = -1
)

// Megabyte is the unit used by the -megs and -zmegs style options.
const Megabyte = 1024 * 1024

package format

// Alignment utilities for arena block sizes.
// Hunk blocks and cache entries are 16-byte aligned; zone blocks are 8-byte aligned.

// Align8 returns n aligned up to the next 8-byte boundary.
// Used for zone block sizes and offsets.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + ZoneAlignMask) & ^ZoneAlignMask
}

// Align16 returns n aligned up to the next 16-byte boundary.
// Used for hunk payloads and cache entry sizes.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + HunkAlignMask) & ^HunkAlignMask
}

// AlignDown8 returns n rounded down to an 8-byte boundary.
func AlignDown8(n int) int {
	return n & ^ZoneAlignMask
}

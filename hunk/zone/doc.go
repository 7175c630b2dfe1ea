// Package zone implements a first-fit coalescing heap inside one low hunk
// allocation.
//
// Blocks tile the backing region with no gaps and form an address-ordered
// circular ring headed by a permanently used 24-byte sentinel block at offset
// 0. Each block carries a 24-byte header (sentinel, in-use tag, size, prev and
// next offsets); used blocks also end with a 4-byte trash tester that must
// still hold the sentinel when the block is freed.
//
// Alloc scans from the rover, the block after the last allocation, and takes
// the first free block that fits. Surplus larger than the minimum fragment is
// split off as a new free block. Free marks the block free and merges it with
// whichever physical neighbours are free, so no two free blocks are ever
// adjacent.
//
// A failed Alloc returns a zero Ref and is recoverable. Every misuse and every
// detected corruption is fatal.
package zone

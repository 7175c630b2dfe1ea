// Package hunk implements the stack arena at the bottom of the memory manager.
//
// # Overview
//
// A Hunk carves one fixed []byte into two stacks. Low allocations grow upward
// from offset 0 and high allocations grow downward from the end of the arena.
// The space between the low and high marks is free and is lent to the
// eviction cache (package hunk/cache) until either stack needs it back.
//
// Every block starts with a 48-byte header:
//
//	Offset  Size  Description
//	0x00    4     Sentinel 0x4fba8fcd
//	0x08    8     Block size, header included
//	0x10    32    Name
//
// The payload follows the header and is 16-byte aligned.
//
// # Allocation and popping
//
//	h := hunk.New(arena, con, hunk.Options{})
//	zone := h.LowAlloc(300<<10, "zone")
//	mark := h.LowMark()
//	level := h.LowAlloc(4096, "level")
//	h.LowPopToMark(mark) // releases "level"
//
// Blocks are released only in stack order. LowPop and HighPop release the most
// recent block of their end; the PopToMark variants rewind to a mark observed
// earlier with LowMark or HighMark.
//
// # Failure model
//
// Every misuse or exhaustion is fatal: the error is handed to the console's
// fatal path and the call never returns. Arenas are sized once at startup and
// -megs is the escape valve.
//
// # Cooperating tiers
//
// Growth of either mark first publishes the new mark and then calls the
// registered Evictor so the cache can move or drop entries in the claimed
// range. Check validates the stacks and then every registered Checker.
//
// # Thread Safety
//
// Every public method holds the Hunk's ticket lock for its full duration.
// Size, LowMark, HighMark and Bounds read atomically published values and do
// not take the lock, so the cache can call them while the Hunk is growing.
package hunk

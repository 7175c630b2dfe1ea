// Package ticket provides a fair spinning mutual-exclusion lock.
//
// Waiters are served strictly in arrival order: Lock takes the next ticket
// and yields the processor until the "now serving" counter reaches it. There
// is no blocking and no priority; a contended Lock burns a scheduler slot per
// spin. The zero value is an unlocked Lock.
package ticket

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Lock is a FIFO ticket lock. A Lock must not be copied after first use.
type Lock struct {
	tickets atomic.Uint64
	serving atomic.Uint64
}

var _ sync.Locker = (*Lock)(nil)

// Lock acquires l, spinning until every earlier ticket has been served.
func (l *Lock) Lock() {
	t := l.tickets.Add(1) - 1
	for l.serving.Load() != t {
		runtime.Gosched()
	}
}

// TryLock acquires l only if nobody holds or waits for it.
func (l *Lock) TryLock() bool {
	s := l.serving.Load()
	return l.tickets.CompareAndSwap(s, s+1)
}

// Unlock releases l to the next ticket holder.
func (l *Lock) Unlock() {
	l.serving.Add(1)
}

// Waiters reports how many tickets are outstanding, including the holder.
func (l *Lock) Waiters() int {
	return int(l.tickets.Load() - l.serving.Load())
}

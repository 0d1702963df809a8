package mcts

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// TwoTierLock is the Tree's mutex: workers take LockLow during
// select/backup, while the main thread takes LockHigh when inspecting or
// pruning the tree. A pending high-priority request makes new LockLow
// callers back off until it has been serviced, so long-running low
// priority holders don't starve an interactive inspection (spec's
// "high-priority request preempts new low-priority acquisitions").
type TwoTierLock struct {
	mu          sync.Mutex
	highWaiting int32
}

// LockLow acquires the lock for a worker's select/backup section.
func (l *TwoTierLock) LockLow() {
	for atomic.LoadInt32(&l.highWaiting) > 0 {
		runtime.Gosched()
	}
	l.mu.Lock()
}

// UnlockLow releases a LockLow acquisition.
func (l *TwoTierLock) UnlockLow() { l.mu.Unlock() }

// LockHigh acquires the lock for the main thread's tree inspection,
// signalling intent before blocking so low-priority callers yield.
func (l *TwoTierLock) LockHigh() {
	atomic.AddInt32(&l.highWaiting, 1)
	l.mu.Lock()
}

// UnlockHigh releases a LockHigh acquisition.
func (l *TwoTierLock) UnlockHigh() {
	l.mu.Unlock()
	atomic.AddInt32(&l.highWaiting, -1)
}

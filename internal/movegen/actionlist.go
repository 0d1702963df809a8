// Package movegen implements ThreatGenerator/MoveGenerator (spec.md §4.5):
// ordered candidate-move production from a calc.Calculator's live threat
// state, backed by a non-allocating arena of Moves.
package movegen

import "github.com/hailam/gomokusearch/internal/board"

// ActionStack is the non-allocating arena backing every ActionList
// produced during a search: one shared, pre-sized buffer sliced per
// recursion level so generation never allocates on the hot path
// (spec.md §4.5 "must be trivially movable and must not allocate during
// search").
type ActionStack struct {
	buf []board.Move
	top int
}

// NewActionStack allocates an arena with room for capacity moves total
// across every concurrently open ActionList snapshot.
func NewActionStack(capacity int) *ActionStack {
	return &ActionStack{buf: make([]board.Move, capacity)}
}

// Snapshot returns a fresh ActionList starting at the stack's current top,
// without allocating. Callers at deeper recursion levels call Snapshot
// again to get a further sub-list; Release must be called in LIFO order
// matching Snapshot calls to reclaim the arena space.
func (s *ActionStack) Snapshot() *ActionList {
	return &ActionList{stack: s, start: s.top}
}

// ActionList is a bounded, contiguous view into an ActionStack's arena:
// spec.md §4.5's ordered candidate-move output, plus the must_defend and
// is_fully_expanded flags.
type ActionList struct {
	stack         *ActionStack
	start, length int
	MustDefend    bool
	FullyExpanded bool
}

// Push appends m, returning false if the arena is exhausted.
func (l *ActionList) Push(m board.Move) bool {
	idx := l.start + l.length
	if idx >= len(l.stack.buf) {
		return false
	}
	l.stack.buf[idx] = m
	l.length++
	if l.stack.top < idx+1 {
		l.stack.top = idx + 1
	}
	return true
}

// Len returns the number of moves currently in the list.
func (l *ActionList) Len() int { return l.length }

// At returns the i'th move.
func (l *ActionList) At(i int) board.Move { return l.stack.buf[l.start+i] }

// Set overwrites the i'th move (used by ordering passes).
func (l *ActionList) Set(i int, m board.Move) { l.stack.buf[l.start+i] = m }

// Moves returns the list's backing slice directly; callers must not
// retain it past the next Release.
func (l *ActionList) Moves() []board.Move { return l.stack.buf[l.start : l.start+l.length] }

// Contains reports whether m (compared by square only) is already present.
func (l *ActionList) Contains(m board.Move) bool {
	for i := 0; i < l.length; i++ {
		if l.At(i).Equal(m) {
			return true
		}
	}
	return false
}

// Release pops the arena back to this list's start, freeing its slots (and
// those of any nested snapshot taken after it) for reuse. Must be called
// in LIFO order with respect to Snapshot.
func (l *ActionList) Release() {
	l.stack.top = l.start
}

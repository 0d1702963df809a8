package calc

import (
	"fmt"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/pattern"
)

// maxForbiddenDepth bounds the Renju forbidden-move recursion (spec.md
// §4.4's "recursive check"): nested forks on a bounded board cannot
// legitimately chain deeper than this before the scan degenerates into
// re-visiting squares already on the board, so we cut it off rather than
// risk runaway recursion on a pathological position.
const maxForbiddenDepth = 6

// Calculator is the incremental PatternCalculator of spec.md §4.4: it
// keeps a private copy of the board plus, for every currently empty
// square, the pattern each side would create in each of the 4 directions
// by playing there, the derived ThreatType for each side, and a
// ThreatHistogram indexing squares by threat for fast candidate-move
// lookup. AddMove/UndoMove keep all of this synchronized in time
// bounded by the neighborhood of the changed square, not the board size.
//
// Raw per-direction lines are not cached; they are re-read directly from
// the board (O(LineLen) per direction) whenever a square needs
// reclassification. This trades the original's bit-packed incremental
// XOR update of raw_patterns for a much simpler implementation at an
// equivalent asymptotic (and still small constant-factor) cost — see
// DESIGN.md.
type Calculator struct {
	rules board.GameRules
	table *pattern.Table

	b    *board.Board
	rows int
	cols int

	sideToMove board.Sign
	hash       board.HashKey64

	crossTypes   [][pattern.NumDirections]pattern.Type
	circleTypes  [][pattern.NumDirections]pattern.Type
	crossClosed  [][pattern.NumDirections]bool
	circleClosed [][pattern.NumDirections]bool
	threatCross  []pattern.Threat
	threatCircle []pattern.Threat

	hist *Histogram
}

// New returns a Calculator for rules with no board loaded yet; call
// SetBoard before use.
func New(rules board.GameRules) *Calculator {
	return &Calculator{
		rules: rules,
		table: pattern.ForRules(rules),
		hist:  NewHistogram(),
	}
}

// Rules returns the game rules this calculator classifies under.
func (c *Calculator) Rules() board.GameRules { return c.rules }

// Board returns the calculator's private board copy. Callers must not
// mutate it directly; use AddMove/UndoMove.
func (c *Calculator) Board() *board.Board { return c.b }

// Hash returns the current Zobrist hash (board contents plus side to move).
func (c *Calculator) Hash() board.HashKey64 { return c.hash }

// Histogram returns the live ThreatHistogram.
func (c *Calculator) Histogram() *Histogram { return c.hist }

// SetBoard resets the calculator to classify from scratch against b
// (cloned internally) with sideToMove to move next.
func (c *Calculator) SetBoard(b *board.Board, sideToMove board.Sign) {
	c.b = b.Clone()
	c.rows, c.cols = b.Rows, b.Cols
	c.sideToMove = sideToMove
	c.hash = board.Hash(c.b, sideToMove)

	n := c.rows * c.cols
	c.crossTypes = make([][pattern.NumDirections]pattern.Type, n)
	c.circleTypes = make([][pattern.NumDirections]pattern.Type, n)
	c.crossClosed = make([][pattern.NumDirections]bool, n)
	c.circleClosed = make([][pattern.NumDirections]bool, n)
	c.threatCross = make([]pattern.Threat, n)
	c.threatCircle = make([]pattern.Threat, n)
	c.hist.Reset()

	for r := 0; r < c.rows; r++ {
		for col := 0; col < c.cols; col++ {
			if c.b.IsEmpty(r, col) {
				c.recomputeSquare(r, col)
			}
		}
	}
}

// SideToMove returns the side the calculator expects to move next.
func (c *Calculator) SideToMove() board.Sign { return c.sideToMove }

func (c *Calculator) squareIndex(r, col int) int { return r*c.cols + col }

// Threat returns the current threat classification for sign at (r, col).
// The square must be empty; an occupied square always reports NoThreat.
func (c *Calculator) Threat(sign board.Sign, r, col int) pattern.Threat {
	idx := c.squareIndex(r, col)
	if sign == board.Cross {
		return c.threatCross[idx]
	}
	return c.threatCircle[idx]
}

// PatternTypes returns the 4-direction pattern classification sign would
// create by playing at (r, col).
func (c *Calculator) PatternTypes(sign board.Sign, r, col int) [pattern.NumDirections]pattern.Type {
	idx := c.squareIndex(r, col)
	if sign == board.Cross {
		return c.crossTypes[idx]
	}
	return c.circleTypes[idx]
}

func (c *Calculator) readLine(r, col int, dir pattern.Direction) [pattern.LineLen]board.Sign {
	dr, dc := pattern.DirectionDeltas[dir][0], pattern.DirectionDeltas[dir][1]
	var line [pattern.LineLen]board.Sign
	for i := -board.HalfLen; i <= board.HalfLen; i++ {
		line[i+board.HalfLen] = c.b.At(r+dr*i, col+dc*i)
	}
	return line
}

// recomputeSquare recomputes the full pattern/threat state for (r, col)
// and updates the histogram accordingly. Only meaningful for empty
// squares; occupied squares are dropped from the histogram.
func (c *Calculator) recomputeSquare(r, col int) {
	idx := c.squareIndex(r, col)
	if !c.b.IsEmpty(r, col) {
		c.hist.Set(false, idx, pattern.NoThreat)
		c.hist.Set(true, idx, pattern.NoThreat)
		return
	}

	var crossGroup, circleGroup pattern.Group
	for d := pattern.Direction(0); d < pattern.NumDirections; d++ {
		enc := c.table.Lookup(c.readLine(r, col, d))
		c.crossTypes[idx][d] = enc.Cross
		c.circleTypes[idx][d] = enc.Circle
		c.crossClosed[idx][d] = enc.CrossClosed
		c.circleClosed[idx][d] = enc.CircleClosed
		crossGroup.Types[d] = enc.Cross
		crossGroup.Closed[d] = enc.CrossClosed
		circleGroup.Types[d] = enc.Circle
		circleGroup.Closed[d] = enc.CircleClosed
	}

	crossThreat := pattern.Classify(crossGroup)
	circleThreat := pattern.Classify(circleGroup)
	c.threatCross[idx] = crossThreat
	c.threatCircle[idx] = circleThreat
	c.hist.Set(false, idx, crossThreat)
	c.hist.Set(true, idx, circleThreat)
}

// touchNeighbors recomputes every empty square within HalfLen of (r, col)
// along all 4 directions: the bounded neighborhood whose classification
// can change when (r, col) changes (spec.md §4.1's update-mask rationale).
func (c *Calculator) touchNeighbors(r, col int) {
	for d := pattern.Direction(0); d < pattern.NumDirections; d++ {
		dr, dc := pattern.DirectionDeltas[d][0], pattern.DirectionDeltas[d][1]
		for off := -board.HalfLen; off <= board.HalfLen; off++ {
			if off == 0 {
				continue
			}
			nr, nc := r+dr*off, col+dc*off
			if !c.b.InBounds(nr, nc) || !c.b.IsEmpty(nr, nc) {
				continue
			}
			c.recomputeSquare(nr, nc)
		}
	}
}

// AddMove plays m on the board, updating the hash and every affected
// square's pattern/threat state and histogram membership.
func (c *Calculator) AddMove(m board.Move) error {
	r, col := int(m.Row), int(m.Col)
	if !c.b.InBounds(r, col) {
		return fmt.Errorf("calc: move %s out of bounds", m)
	}
	if !c.b.IsEmpty(r, col) {
		return fmt.Errorf("calc: square (%d,%d) is not empty", r, col)
	}
	c.b.Set(r, col, m.Sign)
	c.hash ^= board.ZobristCell(r, col, c.cols, m.Sign)
	c.hash ^= board.ZobristSide(c.sideToMove)
	c.sideToMove = c.sideToMove.Invert()
	c.hash ^= board.ZobristSide(c.sideToMove)

	idx := c.squareIndex(r, col)
	c.threatCross[idx] = pattern.NoThreat
	c.threatCircle[idx] = pattern.NoThreat
	c.hist.Set(false, idx, pattern.NoThreat)
	c.hist.Set(true, idx, pattern.NoThreat)
	c.touchNeighbors(r, col)
	return nil
}

// UndoMove reverses a previously applied AddMove(m). Callers must undo
// moves in exact LIFO order.
func (c *Calculator) UndoMove(m board.Move) error {
	r, col := int(m.Row), int(m.Col)
	if !c.b.InBounds(r, col) || c.b.At(r, col) != m.Sign {
		return fmt.Errorf("calc: cannot undo %s, board does not match", m)
	}
	c.b.Set(r, col, board.None)
	c.hash ^= board.ZobristSide(c.sideToMove)
	c.sideToMove = c.sideToMove.Invert()
	c.hash ^= board.ZobristSide(c.sideToMove)
	c.hash ^= board.ZobristCell(r, col, c.cols, m.Sign)

	c.recomputeSquare(r, col)
	c.touchNeighbors(r, col)
	return nil
}

// IsForbidden reports whether sign playing at (r, col) is an illegal
// Renju move for Cross (spec.md §4.4): an OVERLINE, a FORK_4x4, or a
// FORK_3x3 where not every open three can legitimately promote to a
// genuine (non-forbidden) straight four.
func (c *Calculator) IsForbidden(sign board.Sign, r, col int) bool {
	return c.isForbidden(sign, r, col, 0)
}

func (c *Calculator) isForbidden(sign board.Sign, r, col int, depth int) bool {
	if c.rules != board.Renju || sign != board.Cross {
		return false
	}
	if !c.b.InBounds(r, col) || !c.b.IsEmpty(r, col) {
		return false
	}
	idx := c.squareIndex(r, col)
	switch c.threatCross[idx] {
	case pattern.OverlineThreat:
		return true
	case pattern.Fork4x4:
		return true
	case pattern.Fork3x3:
		if depth >= maxForbiddenDepth {
			return false
		}
		return !c.openThreesAllPromote(r, col, depth)
	default:
		return false
	}
}

// openThreesAllPromote checks, for a FORK_3x3 candidate at (r, col), that
// every OPEN_3 direction has some reply that turns it into a genuine four
// (not itself forbidden), by hypothetically playing the fork move and
// inspecting each open-three axis outward.
func (c *Calculator) openThreesAllPromote(r, col int, depth int) bool {
	idx := c.squareIndex(r, col)
	var openDirs []pattern.Direction
	for d := pattern.Direction(0); d < pattern.NumDirections; d++ {
		if c.crossTypes[idx][d] == pattern.Open3 {
			openDirs = append(openDirs, d)
		}
	}
	if len(openDirs) < 2 {
		return true
	}

	m := board.Move{Row: int8(r), Col: int8(col), Sign: board.Cross}
	if err := c.AddMove(m); err != nil {
		return true
	}
	defer c.UndoMove(m)

	for _, d := range openDirs {
		if !c.openThreePromotesOnDir(r, col, d, depth) {
			return false
		}
	}
	return true
}

func (c *Calculator) openThreePromotesOnDir(r, col int, dir pattern.Direction, depth int) bool {
	dr, dc := pattern.DirectionDeltas[dir][0], pattern.DirectionDeltas[dir][1]
	for _, sgn := range [2]int{-1, 1} {
		for step := 1; step <= board.HalfLen; step++ {
			rr, cc := r+dr*sgn*step, col+dc*sgn*step
			if !c.b.InBounds(rr, cc) {
				break
			}
			if !c.b.IsEmpty(rr, cc) {
				break
			}
			t := c.Threat(board.Cross, rr, cc)
			if t == pattern.HalfOpenFourThreat || t == pattern.OpenFourThreat ||
				t == pattern.Fork4x3 || t == pattern.Fork4x4 {
				if !c.isForbidden(board.Cross, rr, cc, depth+1) {
					return true
				}
			}
		}
	}
	return false
}

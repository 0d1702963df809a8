// Package solver implements StaticSolver (spec.md §4.6): direct,
// non-searching enumeration of forced wins/losses/draws up to 5 plies by
// querying a calc.Calculator's live ThreatHistogram.
package solver

import (
	"sort"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/pattern"
)

// Result is what StaticSolver reports: a proven score plus the move that
// achieves (or, for a forced defense, must be played to avoid) it.
// Proven is false when the position is not decided within the solver's
// horizon; Best may still carry a recommended forced-defense move.
type Result struct {
	Score  board.Score
	Best   board.Move
	Proven bool
}

func squareRC(idx, cols int) (int, int) { return idx / cols, idx % cols }

func moveAt(idx, cols int, sign board.Sign) board.Move {
	r, col := squareRC(idx, cols)
	return board.Move{Row: int8(r), Col: int8(col), Sign: sign}
}

func unionSquares(a, b []int) []int {
	set := make(map[int]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func nonForbidden(c *calc.Calculator, sign board.Sign, squares []int, cols int) []int {
	out := squares[:0:0]
	for _, sq := range squares {
		r, col := squareRC(sq, cols)
		if !c.IsForbidden(sign, r, col) {
			out = append(out, sq)
		}
	}
	return out
}

// Solve runs the StaticSolver for the side to move in c.
func Solve(c *calc.Calculator) Result {
	side := c.SideToMove()
	opp := side.Invert()
	selfCircle, oppCircle := side == board.Circle, opp == board.Circle
	h := c.Histogram()
	b := c.Board()

	// Win in 1: attacker has a FIVE square.
	if own := h.Squares(selfCircle, pattern.FiveThreat); len(own) > 0 {
		return Result{Score: board.WinIn(1), Best: moveAt(own[0], b.Cols, side), Proven: true}
	}

	// Loss in 2 (or forced single defense): opponent has a FIVE.
	oppFive := h.Squares(oppCircle, pattern.FiveThreat)
	switch len(oppFive) {
	case 0:
		// fall through to the remaining checks
	case 1:
		return Result{Best: moveAt(oppFive[0], b.Cols, side), Proven: false}
	default:
		if sq, ok := intersectDefenses(c, opp, oppFive); ok {
			return Result{Best: moveAt(sq, b.Cols, side), Proven: false}
		}
		return Result{Score: board.LossIn(2), Proven: true}
	}

	// Win in 3: attacker has OPEN_4 or a non-forbidden FORK_4x4.
	ownFours := unionSquares(h.Squares(selfCircle, pattern.OpenFourThreat),
		nonForbidden(c, side, h.Squares(selfCircle, pattern.Fork4x4), b.Cols))
	if len(ownFours) > 0 {
		return Result{Score: board.WinIn(3), Best: moveAt(ownFours[0], b.Cols, side), Proven: true}
	}

	// Draw in 1: the board is full except one square and no win is available.
	if b.StoneCount() == b.Rows*b.Cols-1 {
		return Result{Score: board.Draw, Proven: true}
	}

	// Win in 5: a FORK_4x3 that converts cleanly, or an uncontested FORK_3x3.
	if sq, ok := winIn5(c, side, opp, selfCircle, oppCircle); ok {
		return Result{Score: board.WinIn(5), Best: moveAt(sq, b.Cols, side), Proven: true}
	}

	return Result{Proven: false}
}

func anyFourOrFive(h *calc.Histogram, isCircle bool) bool {
	return h.Any(isCircle, pattern.FiveThreat) || h.Any(isCircle, pattern.OpenFourThreat) ||
		h.Any(isCircle, pattern.Fork4x4) || h.Any(isCircle, pattern.HalfOpenFourThreat) ||
		h.Any(isCircle, pattern.Fork4x3)
}

// winIn5 looks for a FORK_4x3 whose half-open-four arm forces a single
// defensive reply after which the attacker still retains a four/five-class
// threat (the OPEN_3 arm having promoted), or a non-forbidden FORK_3x3
// that the opponent currently has no four-threat answer to.
func winIn5(c *calc.Calculator, side, opp board.Sign, selfCircle, oppCircle bool) (int, bool) {
	b := c.Board()
	h := c.Histogram()

	for _, sq := range nonForbidden(c, side, h.Squares(selfCircle, pattern.Fork4x3), b.Cols) {
		r, col := squareRC(sq, b.Cols)
		m := board.Move{Row: int8(r), Col: int8(col), Sign: side}
		if c.AddMove(m) != nil {
			continue
		}
		ok := evaluateFork4x3(c, side, opp, selfCircle, oppCircle)
		c.UndoMove(m)
		if ok {
			return sq, true
		}
	}

	for _, sq := range nonForbidden(c, side, h.Squares(selfCircle, pattern.Fork3x3), b.Cols) {
		if !anyFourOrFive(h, oppCircle) {
			return sq, true
		}
	}
	return 0, false
}

func evaluateFork4x3(c *calc.Calculator, side, opp board.Sign, selfCircle, oppCircle bool) bool {
	h := c.Histogram()
	b := c.Board()
	if anyFourOrFive(h, oppCircle) {
		return false
	}
	fives := h.Squares(selfCircle, pattern.FiveThreat)
	if len(fives) == 0 {
		return false
	}
	block := board.Move{Sign: opp}
	block.Row, block.Col = int8(fives[0]/b.Cols), int8(fives[0]%b.Cols)
	if c.AddMove(block) != nil {
		return false
	}
	defer c.UndoMove(block)
	return h.Any(selfCircle, pattern.FiveThreat) || h.Any(selfCircle, pattern.OpenFourThreat) ||
		h.Any(selfCircle, pattern.Fork4x4) || h.Any(selfCircle, pattern.Fork4x3) ||
		h.Any(selfCircle, pattern.HalfOpenFourThreat)
}

// intersectDefenses is the CARO "one move blocks two FIVEs" runtime
// combinator (spec.md §4.6), grounded on original_source's split between
// DefensiveMoveTable construction and a DefensiveMoveFinder that
// intersects bitmasks across simultaneous threats. For each threatening
// square it unions the DefensiveMoveTable response across all 4
// directions, translated to absolute board squares, then intersects
// those sets across every threat; a square surviving every intersection
// is a move that denies all of the threats at once.
func intersectDefenses(c *calc.Calculator, attacker board.Sign, squares []int) (int, bool) {
	rules := c.Rules()
	dt := pattern.NewDefensiveTable(rules)
	b := c.Board()

	var sets []map[int]struct{}
	for _, sq := range squares {
		r, col := squareRC(sq, b.Cols)
		combined := map[int]struct{}{}
		for d := pattern.Direction(0); d < pattern.NumDirections; d++ {
			line := extendedLine(b, r, col, d)
			mask := dt.Defenses(line, attacker, pattern.FiveThreat)
			dr, dc := pattern.DirectionDeltas[d][0], pattern.DirectionDeltas[d][1]
			for bit := 0; bit < pattern.ExtendedLineLen; bit++ {
				if mask&(1<<uint(bit)) == 0 {
					continue
				}
				offset := bit - pattern.ExtCenter
				nr, nc := r+dr*offset, col+dc*offset
				if b.InBounds(nr, nc) {
					combined[nr*b.Cols+nc] = struct{}{}
				}
			}
		}
		sets = append(sets, combined)
	}
	if len(sets) == 0 {
		return 0, false
	}
	result := sets[0]
	for _, s := range sets[1:] {
		for k := range result {
			if _, ok := s[k]; !ok {
				delete(result, k)
			}
		}
	}
	keys := make([]int, 0, len(result))
	for k := range result {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return 0, false
	}
	sort.Ints(keys)
	return keys[0], true
}

func extendedLine(b *board.Board, r, col int, dir pattern.Direction) [pattern.ExtendedLineLen]board.Sign {
	dr, dc := pattern.DirectionDeltas[dir][0], pattern.DirectionDeltas[dir][1]
	var line [pattern.ExtendedLineLen]board.Sign
	for i := -pattern.ExtCenter; i <= pattern.ExtCenter; i++ {
		line[i+pattern.ExtCenter] = b.At(r+dr*i, col+dc*i)
	}
	return line
}

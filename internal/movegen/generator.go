package movegen

import (
	"sort"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/pattern"
)

// crownRadius is half the side of the 7x7 "crown" neighborhood spec.md
// §4.5 admits a square into REDUCED/NORMAL generation for being near an
// existing stone.
const crownRadius = 3

// Generate produces an ActionList for mode from c's current state,
// snapshotting into stack. Static and Basic return an empty,
// not-fully-expanded list: spec.md §4.5 delegates those modes entirely to
// package solver's StaticSolver, which callers invoke directly.
func Generate(mode Mode, c *calc.Calculator, stack *ActionStack) *ActionList {
	switch mode {
	case Legal:
		return generateLegal(c, stack)
	case Threats:
		return generateThreats(c, stack)
	case Reduced, Normal:
		return generateReduced(c, stack)
	case VCF:
		return generateVCF(c, stack)
	default: // Static, Basic
		list := stack.Snapshot()
		return list
	}
}

func squareRC(idx, cols int) (int, int) { return idx / cols, idx % cols }

func sideIsCircle(s board.Sign) bool { return s == board.Circle }

func pushSquares(list *ActionList, squares []int, cols int, sign board.Sign) {
	for _, idx := range squares {
		r, col := squareRC(idx, cols)
		list.Push(board.Move{Row: int8(r), Col: int8(col), Sign: sign})
	}
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

func generateLegal(c *calc.Calculator, stack *ActionStack) *ActionList {
	list := stack.Snapshot()
	b := c.Board()
	side := c.SideToMove()
	for r := 0; r < b.Rows; r++ {
		for col := 0; col < b.Cols; col++ {
			if b.IsEmpty(r, col) {
				list.Push(board.Move{Row: int8(r), Col: int8(col), Sign: side})
			}
		}
	}
	list.FullyExpanded = true
	return list
}

// generateThreats implements spec.md §4.5's cascading THREATS priority
// order, stopping at the first non-empty tier.
func generateThreats(c *calc.Calculator, stack *ActionStack) *ActionList {
	list := stack.Snapshot()
	b := c.Board()
	side := c.SideToMove()
	opp := side.Invert()
	selfCircle, oppCircle := sideIsCircle(side), sideIsCircle(opp)
	h := c.Histogram()

	if own := h.Squares(selfCircle, pattern.FiveThreat); len(own) > 0 {
		pushSquares(list, own, b.Cols, side)
		return list
	}

	if defend := h.Squares(oppCircle, pattern.FiveThreat); len(defend) > 0 {
		pushSquares(list, defend, b.Cols, side)
		list.MustDefend = true
		return list
	}

	ownOpen4 := unionSquares(h.Squares(selfCircle, pattern.OpenFourThreat), h.Squares(selfCircle, pattern.Fork4x4))
	if len(ownOpen4) > 0 {
		pushSquares(list, ownOpen4, b.Cols, side)
		return list
	}

	defend4 := unionSquares(h.Squares(oppCircle, pattern.OpenFourThreat), h.Squares(oppCircle, pattern.Fork4x4))
	ownFour3 := unionSquares(h.Squares(selfCircle, pattern.HalfOpenFourThreat), h.Squares(selfCircle, pattern.Fork4x3))
	tier4 := unionSquares(defend4, ownFour3)
	if len(tier4) > 0 {
		pushSquares(list, tier4, b.Cols, side)
		if len(defend4) > 0 {
			list.MustDefend = true
		}
		return list
	}

	tier5 := unionSquares(h.Squares(selfCircle, pattern.HalfOpenFourThreat), h.Squares(selfCircle, pattern.OpenThree))
	if len(tier5) > 0 {
		pushSquares(list, tier5, b.Cols, side)
		return list
	}

	list.FullyExpanded = true
	return list
}

// generateReduced returns generateThreats' list unchanged when it is
// non-empty; otherwise it returns every empty square within crownRadius of
// an existing stone. The two sets are never combined: when a threat tier
// exists, crown squares are not added.
func generateReduced(c *calc.Calculator, stack *ActionStack) *ActionList {
	threats := generateThreats(c, stack)
	if threats.Len() > 0 {
		// THREATS already found a forcing tier; REDUCED/NORMAL only
		// broadens the *quiet*-position candidate set, so a forcing tier
		// is returned as-is (it dominates any crown move).
		return threats
	}
	threats.Release()

	list := stack.Snapshot()
	b := c.Board()
	side := c.SideToMove()
	seen := make(map[int]struct{})
	for r := 0; r < b.Rows; r++ {
		for col := 0; col < b.Cols; col++ {
			if b.At(r, col) == board.None || b.At(r, col) == board.Illegal {
				continue
			}
			for dr := -crownRadius; dr <= crownRadius; dr++ {
				for dc := -crownRadius; dc <= crownRadius; dc++ {
					nr, nc := r+dr, col+dc
					if !b.IsEmpty(nr, nc) {
						continue
					}
					idx := nr*b.Cols + nc
					if _, ok := seen[idx]; ok {
						continue
					}
					seen[idx] = struct{}{}
					list.Push(board.Move{Row: int8(nr), Col: int8(nc), Sign: side})
				}
			}
		}
	}
	list.FullyExpanded = true
	return list
}

// generateVCF restricts candidates to four-making moves and the forced
// replies they provoke (spec.md §4.5).
func generateVCF(c *calc.Calculator, stack *ActionStack) *ActionList {
	list := stack.Snapshot()
	b := c.Board()
	side := c.SideToMove()
	opp := side.Invert()
	selfCircle, oppCircle := sideIsCircle(side), sideIsCircle(opp)
	h := c.Histogram()

	own := unionSquares(h.Squares(selfCircle, pattern.FiveThreat), unionSquares(
		unionSquares(h.Squares(selfCircle, pattern.OpenFourThreat), h.Squares(selfCircle, pattern.HalfOpenFourThreat)),
		unionSquares(h.Squares(selfCircle, pattern.Fork4x3), h.Squares(selfCircle, pattern.Fork4x4)),
	))
	pushSquares(list, own, b.Cols, side)

	forced := unionSquares(h.Squares(oppCircle, pattern.FiveThreat), unionSquares(
		h.Squares(oppCircle, pattern.OpenFourThreat), h.Squares(oppCircle, pattern.Fork4x4)))
	for _, idx := range forced {
		r, col := squareRC(idx, b.Cols)
		m := board.Move{Row: int8(r), Col: int8(col), Sign: side}
		if !list.Contains(m) {
			list.Push(m)
		}
	}
	if len(forced) > 0 {
		list.MustDefend = true
	}
	if list.Len() == 0 {
		list.FullyExpanded = true
	}
	return list
}

// Order reorders list in place so ttMove (if present) comes first,
// followed by any legal killers (in ring order) not already placed, then
// the generator's own priority order is left untouched (spec.md §4.5:
// "stable with respect to repeat calls before any move is made").
func Order(list *ActionList, ttMove board.Move, killers []board.Move) {
	next := 0
	placeFirst := func(m board.Move) {
		if m.IsNone() {
			return
		}
		for i := next; i < list.Len(); i++ {
			if list.At(i).Equal(m) {
				if i != next {
					tmp := list.At(next)
					list.Set(next, list.At(i))
					list.Set(i, tmp)
				}
				next++
				return
			}
		}
	}
	placeFirst(ttMove)
	for _, k := range killers {
		placeFirst(k)
	}
}

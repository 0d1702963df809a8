package solver

import (
	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/pattern"
)

// SolveVCF runs a dedicated "victory by continuous fours" search: the
// side to move tries to force a win by playing only four-making moves,
// to which the opponent has at most one forced reply each ply. Grounded
// on original_source/src/vcf_solver/VCFSolver.cpp's separation of this
// cheap tactical pre-pass from the general ThreatSpaceSearch (see
// SPEC_FULL.md DOMAIN STACK).
func SolveVCF(c *calc.Calculator, maxPlies int) Result {
	m, plies, ok := vcfSearch(c, c.SideToMove(), maxPlies)
	if !ok {
		return Result{Proven: false}
	}
	return Result{Score: board.WinIn(plies), Best: m, Proven: true}
}

func vcfSearch(c *calc.Calculator, side board.Sign, budget int) (board.Move, int, bool) {
	if budget <= 0 {
		return board.NoMove, 0, false
	}
	h := c.Histogram()
	b := c.Board()
	selfCircle := side == board.Circle
	opp := side.Invert()
	oppCircle := opp == board.Circle

	if own := h.Squares(selfCircle, pattern.FiveThreat); len(own) > 0 {
		return moveAt(own[0], b.Cols, side), 1, true
	}

	fourMoves := unionSquares(
		unionSquares(h.Squares(selfCircle, pattern.HalfOpenFourThreat), h.Squares(selfCircle, pattern.Fork4x3)),
		unionSquares(h.Squares(selfCircle, pattern.Fork4x4), h.Squares(selfCircle, pattern.OpenFourThreat)),
	)
	fourMoves = nonForbidden(c, side, fourMoves, b.Cols)

	for _, sq := range fourMoves {
		m := moveAt(sq, b.Cols, side)
		if c.AddMove(m) != nil {
			continue
		}

		if anyFourOrFive(h, oppCircle) {
			c.UndoMove(m)
			continue
		}
		selfFive := h.Squares(selfCircle, pattern.FiveThreat)
		if len(selfFive) == 0 {
			c.UndoMove(m)
			continue
		}
		if len(selfFive) >= 2 {
			// opponent cannot block every completion square: this move,
			// one block, then the five, so a win in 3.
			c.UndoMove(m)
			return m, 3, true
		}

		block := moveAt(selfFive[0], b.Cols, opp)
		if c.AddMove(block) != nil {
			c.UndoMove(m)
			continue
		}
		_, plies, ok := vcfSearch(c, side, budget-2)
		c.UndoMove(block)
		c.UndoMove(m)
		if ok {
			return m, plies + 2, true
		}
	}
	return board.NoMove, 0, false
}

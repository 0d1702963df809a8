package pattern

import "github.com/hailam/gomokusearch/internal/board"

// ExtendedLineLen is the length of the extended pattern DefensiveMoveTable
// reasons over (spec.md §4.3): one cell wider on each side than LineLen so
// a completion square just beyond the 11-cell pattern window is still
// visible.
const ExtendedLineLen = LineLen + 2
const ExtCenter = ExtendedLineLen / 2

// DefensiveTable answers "which squares, if played by the defender, deny
// the attacker this threat" for a given extended line (spec.md §4.3).
//
// The original builds this by an exhaustive shallow search (try every
// defender square, let the attacker reply to depth 3, keep squares that
// hold). This port computes the equivalent result directly: a threat
// becomes a FIVE only by the attacker completing one of the empty cells in
// some win-length window that is otherwise entirely the attacker's stones;
// those completion cells are exactly the set a depth-3 search would also
// converge on, since occupying (or removing access to) any one of them
// immediately removes that particular route to five. The per-direction
// intersection across *multiple simultaneous* threats (the CARO
// "one move blocks two fives" case, spec.md §4.6) is the runtime
// combinator in package solver, grounded on
// original_source/src/patterns/DefensiveMoveFinder.cpp's construction/
// finder split (see DESIGN.md).
type DefensiveTable struct {
	rules board.GameRules
}

// NewDefensiveTable returns the (stateless, rule-parameterized) defensive
// move table for rules.
func NewDefensiveTable(rules board.GameRules) *DefensiveTable {
	return &DefensiveTable{rules: rules}
}

// Defenses returns the bitmask (bit i set means position i of line is a
// defending square) of cells that complete a win-length run for attacker
// in line, for any threat class that is genuinely one move from five:
// FiveThreat and Overline themselves, and every four-class threat
// (HalfOpenFourThreat, Fork4x3, Fork4x4, OpenFourThreat) — all of those
// reduce to the same window shape, win_length-1 attacker stones plus a
// single gap in some win-length window, since a half-open four has one
// such gap and an open four has two (a fact the caller/solver uses to
// conclude an open four is undefendable alone).
//
// Three-class threats (HalfOpen3, OpenThree, Fork3x3) are not one move
// from five — defending one means stopping it from advancing to a four
// first, a distinct two-ply question this single-window bitmask cannot
// answer — so Defenses returns an empty mask for them rather than a
// plausible-looking wrong one. The sole caller, solver.intersectDefenses,
// only ever queries FiveThreat (spec.md §4.6's CARO double-five case).
func (dt *DefensiveTable) Defenses(line [ExtendedLineLen]board.Sign, attacker board.Sign, threat Threat) uint16 {
	if !threat.IsFour() && threat != FiveThreat && threat != OverlineThreat {
		return 0
	}

	winLen := dt.rules.WinLength()
	var mask uint16
	for off := 0; off+winLen <= ExtendedLineLen; off++ {
		attackerCount, noneCount, blockers, gapPos := 0, 0, 0, -1
		for k := off; k < off+winLen; k++ {
			switch line[k] {
			case attacker:
				attackerCount++
			case board.None:
				noneCount++
				gapPos = k
			default:
				blockers++
			}
		}
		if blockers == 0 && attackerCount == winLen-1 && noneCount == 1 {
			mask |= 1 << uint(gapPos)
		}
	}
	return mask
}

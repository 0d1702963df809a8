package nnue

import (
	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/pattern"
)

// MaxRows, MaxCols bound the largest board the weight tables are shaped
// for (spec.md's 15x15 standard board); smaller boards used in tests
// simply leave the high feature indices always inactive.
const (
	MaxRows     = 15
	MaxCols     = 15
	MaxSquares  = MaxRows * MaxCols
	numThreats  = int(pattern.OverlineThreat) + 1
	squareBlock = numThreats * 2 // self-threat block, then opponent-threat block

	// FeatureCount is the input layer width: one-hot per empty square of
	// (perspective-relative self/opponent) ThreatType, plus a bias feature.
	FeatureCount = MaxSquares*squareBlock + 1

	toMoveFeature = MaxSquares * squareBlock
)

// squareFeature returns the feature index for a ThreatType t seen at
// board index idx from some perspective, self reporting whether t
// belongs to that perspective's own side. Returns -1 for an
// out-of-bounds square or a NoThreat (folded into the layer bias).
func squareFeature(idx int, self bool, t pattern.Threat) int {
	if idx < 0 || idx >= MaxSquares || t == pattern.NoThreat {
		return -1
	}
	block := 0
	if !self {
		block = 1
	}
	return idx*squareBlock + block*numThreats + int(t)
}

// ActiveFeatures appends every feature index active in c's current
// position, as seen from perspective's point of view, to dst and
// returns the extended slice. Playing the same position from Cross's
// and from Circle's perspective yields different feature sets (self
// and opponent threats are swapped), matching the teacher's mirrored
// HalfKP encoding.
func ActiveFeatures(c *calc.Calculator, perspective board.Sign, dst []int) []int {
	b := c.Board()
	opponent := perspective.Invert()

	for r := 0; r < b.Rows && r < MaxRows; r++ {
		for col := 0; col < b.Cols && col < MaxCols; col++ {
			if !b.IsEmpty(r, col) {
				continue
			}
			idx := r*MaxCols + col
			if f := squareFeature(idx, true, c.Threat(perspective, r, col)); f >= 0 {
				dst = append(dst, f)
			}
			if f := squareFeature(idx, false, c.Threat(opponent, r, col)); f >= 0 {
				dst = append(dst, f)
			}
		}
	}

	if c.SideToMove() == perspective {
		dst = append(dst, toMoveFeature)
	}
	return dst
}

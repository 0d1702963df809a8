package tss

import (
	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/pattern"
)

// threatWeight is the fallback leaf evaluator's per-ThreatType weight
// table (spec.md §4.8's "hand-crafted weighted threat histogram"),
// grounded on the teacher's internal/engine/eval.go *style* of named
// weight tables and additive scoring — the terms themselves are new,
// since chess positional concepts (pawn structure, king safety) have no
// Gomoku equivalent (see DESIGN.md).
var threatWeight = [...]int{
	pattern.NoThreat:          0,
	pattern.HalfOpen3:         2,
	pattern.OpenThree:         8,
	pattern.Fork3x3:           24,
	pattern.HalfOpenFourThreat: 20,
	pattern.Fork4x3:           60,
	pattern.Fork4x4:           90,
	pattern.OpenFourThreat:    90,
	pattern.FiveThreat:        800,
	pattern.OverlineThreat:    0,
}

// evalFallback scores c's current position from the side-to-move's
// perspective by summing threatWeight over every square of the live
// ThreatHistogram, own squares positive and opponent squares negative.
// Used when no NNUE evaluator is configured (spec.md §4.8).
func evalFallback(c *calc.Calculator) board.Score {
	side := c.SideToMove()
	selfCircle := side == board.Circle
	oppCircle := !selfCircle

	h := c.Histogram()
	total := 0
	for t := pattern.HalfOpen3; t <= pattern.OverlineThreat; t++ {
		w := threatWeight[t]
		if w == 0 {
			continue
		}
		total += w * h.Count(selfCircle, t)
		total -= w * h.Count(oppCircle, t)
	}
	return board.Eval(total)
}

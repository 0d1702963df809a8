// Package nnue implements an incrementally updatable two-layer integer
// network for leaf evaluation (spec.md §4.9). The feature set is a
// one-hot encoding per empty square of per-side ThreatType, plus a single
// side-to-move bias feature, following package calc's live
// ThreatHistogram rather than chess's king-bucketed piece placement.
package nnue

import (
	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
)

// Network architecture constants.
const (
	// L1Size is the per-perspective hidden layer width.
	L1Size = 256
	// L2Size is the second hidden layer width.
	L2Size = 32

	// InputQuantShift, L1QuantShift, L2QuantShift scale quantized
	// arithmetic between layers, matching the teacher's fixed-point
	// scheme.
	InputQuantShift = 6
	L1QuantShift    = 6
	L2QuantShift    = 6

	// OutputScale maps the raw integer output onto roughly [-1, 1]
	// before Forward's final clamp.
	OutputScale = 4096
)

// ClampedReLU clamps a quantized layer output to [0, 127].
func ClampedReLU(x int16) int8 {
	if x < 0 {
		return 0
	}
	if x > 127 {
		return 127
	}
	return int8(x)
}

// Evaluator is a ThreatSpaceSearch leaf evaluator (package tss's
// Evaluator interface): Refresh rebuilds the accumulator from scratch,
// Update resynchronizes it after a single AddMove or UndoMove on the
// calculator, and Forward is a pure read of the current accumulator.
type Evaluator struct {
	net *Network
	acc Accumulator

	crossActive, circleActive         []int // scratch
	crossSnapshot, circleSnapshot     map[int]bool
	sideIsCircle                      bool
}

// NewEvaluator builds an Evaluator around net. If net is nil, a
// zero-weight network is used (Forward then always returns 0, the
// behavior of an untrained network rather than an error).
func NewEvaluator(net *Network) *Evaluator {
	if net == nil {
		net = NewNetwork()
	}
	return &Evaluator{
		net:           net,
		crossSnapshot: make(map[int]bool, 64),
		circleSnapshot: make(map[int]bool, 64),
	}
}

// Refresh rebuilds both perspectives' accumulators from every currently
// active feature.
func (e *Evaluator) Refresh(c *calc.Calculator) {
	e.crossActive = ActiveFeatures(c, board.Cross, e.crossActive[:0])
	e.circleActive = ActiveFeatures(c, board.Circle, e.circleActive[:0])
	e.acc.ComputeFull(e.net, e.crossActive, e.circleActive)
	e.sideIsCircle = c.SideToMove() == board.Circle

	resnapshot(e.crossSnapshot, e.crossActive)
	resnapshot(e.circleSnapshot, e.circleActive)
}

// Update resynchronizes the accumulator to c's current state, diffing
// each perspective's feature set against the snapshot recorded at the
// last Refresh or Update call. Because the diff is taken against live
// state rather than a specific move, this is correct whether the caller
// just played a move or just undid one (spec.md §4.9's "a single move
// added or removed").
func (e *Evaluator) Update(c *calc.Calculator) {
	if !e.acc.Computed {
		e.Refresh(c)
		return
	}

	e.crossActive = ActiveFeatures(c, board.Cross, e.crossActive[:0])
	e.circleActive = ActiveFeatures(c, board.Circle, e.circleActive[:0])

	diffApply(e.crossSnapshot, e.crossActive, e.acc.AddCross, e.acc.RemoveCross, e.net)
	diffApply(e.circleSnapshot, e.circleActive, e.acc.AddCircle, e.acc.RemoveCircle, e.net)

	resnapshot(e.crossSnapshot, e.crossActive)
	resnapshot(e.circleSnapshot, e.circleActive)
	e.sideIsCircle = c.SideToMove() == board.Circle
}

// Forward returns the network's evaluation of the accumulator's current
// state from the perspective of the side to move as of the last Refresh
// or Update call, scaled to [-1, 1] (package tss's Evaluator contract).
func (e *Evaluator) Forward() float64 {
	if !e.acc.Computed {
		return 0
	}
	raw := e.net.Forward(&e.acc, e.sideIsCircle)
	v := float64(raw) / float64(OutputScale)
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return v
}

func resnapshot(snap map[int]bool, active []int) {
	for k := range snap {
		delete(snap, k)
	}
	for _, f := range active {
		snap[f] = true
	}
}

func diffApply(snap map[int]bool, active []int, add, remove func(*Network, int), net *Network) {
	current := make(map[int]bool, len(active))
	for _, f := range active {
		current[f] = true
	}
	for f := range snap {
		if !current[f] {
			remove(net, f)
		}
	}
	for f := range current {
		if !snap[f] {
			add(net, f)
		}
	}
}

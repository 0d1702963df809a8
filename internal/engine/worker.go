package engine

import (
	"math/rand"
	"sync/atomic"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/mcts"
	"github.com/hailam/gomokusearch/internal/nnue"
	"github.com/hailam/gomokusearch/internal/pattern"
	"github.com/hailam/gomokusearch/internal/tss"
	"github.com/hailam/gomokusearch/internal/tt"
)

// worker bundles one goroutine's private search state: its own calculator,
// ThreatSpaceSearch, evaluator and random source, sharing only the Engine's
// Tree and SharedHashTable (spec.md §5: "each thread owns its own
// PatternCalculator, ThreatSpaceSearch instance, SearchTask, and NNUE
// inference state").
type worker struct {
	id    int
	mcts  *mcts.Worker
	nodes atomic.Uint64
}

// newWorker builds one worker sharing table and net but owning its own
// calculator, TSS instance and evaluator.
func newWorker(id int, rules board.GameRules, table *tt.Table, net *nnue.Network, mode tss.Mode, maxPositions int, seed int64) *worker {
	c := calc.New(rules)
	eval := newFallbackEvaluator(rules, net)
	search := tss.New(c, table, tss.Config{
		Evaluator: eval.nn,
	})

	return &worker{
		id: id,
		mcts: &mcts.Worker{
			Calc:         c,
			Search:       search,
			Eval:         eval,
			Mode:         mode,
			MaxPositions: maxPositions,
			Rng:          rand.New(rand.NewSource(seed)),
		},
	}
}

// run drives the worker's calculator to (b, side) and repeatedly calls
// tree.Simulate until stop reports true, per spec's worker loop
// "select -> (solve + evaluate) -> expand -> backup".
func (w *worker) run(tree *mcts.Tree, b *board.Board, side board.Sign, stop func() bool) {
	w.mcts.Calc.SetBoard(b, side)
	for !stop() {
		tree.Simulate(w.mcts)
		w.nodes.Add(1)
	}
}

// threatWeight scores a pattern.Threat classification for the heuristic
// policy prior the fallback evaluator derives when no trained policy head
// is wired in (spec.md §4.9's "policy" output), grounded on the same
// threat-severity ordering tss/eval_fallback.go scores leaves with.
var threatWeight = [...]float64{
	pattern.NoThreat:           1,
	pattern.HalfOpen3:          4,
	pattern.OpenThree:          10,
	pattern.Fork3x3:            16,
	pattern.HalfOpenFourThreat: 30,
	pattern.Fork4x3:            60,
	pattern.Fork4x4:            100,
	pattern.OpenFourThreat:     400,
	pattern.FiveThreat:         4000,
	pattern.OverlineThreat:     4000,
}

// fallbackEvaluator adapts package nnue's leaf-only scalar Evaluator
// (package tss's contract, §4.9) into package mcts's richer Evaluator
// contract (value + policy + action values + moves_left, §6), deriving
// the policy and moves_left heuristically from the calculator's threat
// histogram rather than a trained policy head — the same "no NN available"
// fallback spirit as tss/eval_fallback.go, one level up the stack.
type fallbackEvaluator struct {
	calc *calc.Calculator
	nn   *nnue.Evaluator
}

func newFallbackEvaluator(rules board.GameRules, net *nnue.Network) *fallbackEvaluator {
	return &fallbackEvaluator{calc: calc.New(rules), nn: nnue.NewEvaluator(net)}
}

// RequestEvaluation implements mcts.Evaluator. It owns a private
// calculator distinct from the worker's main one, since Refresh rebuilds
// the NNUE accumulator from scratch for whatever board it is pointed at,
// and this is only called once per newly expanded leaf rather than in the
// TSS recursion's hot path.
func (f *fallbackEvaluator) RequestEvaluation(b *board.Board, side board.Sign) (board.Value, mcts.PolicyGrid, mcts.ValueGrid, float64) {
	f.calc.SetBoard(b, side)
	f.nn.Refresh(f.calc)
	scalar := f.nn.Forward()

	values := make([]float64, b.Rows*b.Cols)
	empties := 0
	total := 0.0
	opponent := side.Invert()
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if !b.IsEmpty(r, c) {
				continue
			}
			empties++
			w := threatWeight[f.calc.Threat(side, r, c)]
			if ow := threatWeight[f.calc.Threat(opponent, r, c)]; ow > w {
				w = ow
			}
			values[r*b.Cols+c] = w
			total += w
		}
	}
	if total == 0 {
		for i := range values {
			values[i] = 1
		}
		total = float64(len(values))
	}
	for i := range values {
		values[i] /= total
	}

	win := (scalar + 1) / 2
	value := board.Value{Win: win, Loss: 1 - win}

	return value, mcts.PolicyGrid{Rows: b.Rows, Cols: b.Cols, Values: values}, mcts.ValueGrid{}, float64(empties)
}

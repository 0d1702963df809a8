package mcts

import (
	"math/rand"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/tss"
)

// ValueGrid is the evaluator's per-square action-value output
// (spec's "action_values[R×C]", each a Value triple).
type ValueGrid struct {
	Rows, Cols int
	Values     []board.Value
}

// At returns the action value at (r, c).
func (g ValueGrid) At(r, c int) board.Value {
	if g.Values == nil {
		return board.ZeroValue
	}
	return g.Values[r*g.Cols+c]
}

// Evaluator is the network consulted by Tree.Simulate at a newly reached
// leaf (spec's §6 "Evaluator interface", distinct from package tss's
// leaf-only scalar NNUE contract): request_evaluation(task) -> (value,
// policy, action_values, moves_left).
type Evaluator interface {
	RequestEvaluation(b *board.Board, side board.Sign) (value board.Value, policy PolicyGrid, actionValues ValueGrid, movesLeft float64)
}

// Worker bundles one goroutine's private search state: its own
// calculator (driven to the root position before the worker starts), its
// own ThreatSpaceSearch and Evaluator, and an independent random source
// for selector tie-breaking and root noise (spec's §5: "each thread owns
// its own PatternCalculator, ThreatSpaceSearch instance, SearchTask, and
// NNUE inference state").
type Worker struct {
	Calc      *calc.Calculator
	Search    *tss.ThreatSpaceSearch
	Eval      Evaluator
	Mode      tss.Mode
	MaxPositions int
	Rng       *rand.Rand
}

// Simulate runs one select -> (solve + evaluate) -> expand -> backup
// cycle against tree, per spec's §5 worker loop. The worker's calculator
// is left exactly where it started (every AddMove taken during Select is
// undone again before Simulate returns), so the same Worker can call
// Simulate in a tight loop.
func (t *Tree) Simulate(w *Worker) {
	path, outcome := t.Select(w.Calc, w.Rng)
	defer t.undoPath(w.Calc, path)

	switch outcome {
	case ReachedProvenEdge:
		t.backupProven(path)
		return
	case InformationLeak:
		t.CorrectInformationLeak(path)
		t.backupFromLastChild(path)
		return
	}

	// ReachedLeaf: the worker's calculator now sits at the newly
	// discovered position; run TSS first, since a forced win/loss found
	// there is authoritative and cheaper than a network evaluation.
	task := &tss.Task{}
	w.Search.Solve(task, w.Mode, w.MaxPositions)

	if task.Ready && task.Score.IsProven() {
		value := board.FromProven(task.Score.ProvenValue())
		node := t.Expand(w.Calc, path, task, PolicyGrid{}, value, 0)
		node.Score = task.Score
		t.Backup(path, value.Invert(), 1, task.Score.Negate())
		return
	}

	value, policy, _, movesLeft := w.Eval.RequestEvaluation(w.Calc.Board(), w.Calc.SideToMove())
	t.Expand(w.Calc, path, task, policy, value, movesLeft)
	t.Backup(path, value.Invert(), movesLeft+1, board.Score(0))
}

// undoPath rewinds every AddMove Select performed, in reverse order, so
// the worker's calculator returns to the tree root.
func (t *Tree) undoPath(c *calc.Calculator, path []pathStep) {
	for i := len(path) - 1; i >= 0; i-- {
		_ = c.UndoMove(path[i].node.Edges[path[i].edge].Move)
	}
}

// backupProven backs up a ReachedProvenEdge outcome: the last edge on
// the path already carries a proven Value/Score, so no fresh evaluation
// is needed.
func (t *Tree) backupProven(path []pathStep) {
	if len(path) == 0 {
		return
	}
	last := path[len(path)-1]
	edge := &last.node.Edges[last.edge]
	t.Backup(path, edge.Value, 0, edge.Score)
}

// backupFromLastChild backs up after an information-leak correction,
// using the already-corrected child's value as the fresh leaf sample.
func (t *Tree) backupFromLastChild(path []pathStep) {
	if len(path) == 0 {
		return
	}
	last := path[len(path)-1]
	edge := &last.node.Edges[last.edge]
	if edge.child == nil {
		t.Backup(path, edge.Value, 0, edge.Score)
		return
	}
	t.Backup(path, edge.child.Value.Invert(), edge.child.MovesLeft+1, edge.child.Score.Negate())
}

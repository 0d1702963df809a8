// Package tss implements ThreatSpaceSearch (spec.md §4.8): a negamax
// alpha-beta search over the forcing-move lists produced by package
// movegen, backed by the shared transposition table of package tt and,
// at its leaves, package solver's StaticSolver or an external evaluator.
package tss

import (
	"time"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/movegen"
	"github.com/hailam/gomokusearch/internal/solver"
	"github.com/hailam/gomokusearch/internal/tt"
)

// MaxPly bounds the killer-move ring and the iterative-deepening ladder,
// matching the teacher's engine.MaxPly.
const MaxPly = 128

// depthStep is spec.md §4.8's iterative-deepening increment: 4 plies, so
// every completed iteration includes at least one attacker/defender pair
// on each side.
const depthStep = 4

// killerSlots is the per-ply killer ring size (spec.md §4.8).
const killerSlots = 4

// Mode selects how Solve resolves a task (spec.md §6's TSS interface).
// VCF is this module's addition (see SPEC_FULL.md DOMAIN STACK): it hands
// the position to solver.SolveVCF, a separate fours-only search that does
// not use this package's negamax.
type Mode int

const (
	// Basic delegates entirely to StaticSolver (spec.md §4.5's
	// STATIC/BASIC generation modes, mirrored here for the solve side).
	Basic Mode = iota
	// Static is Basic's synonym.
	Static
	// Recursive runs the full iterative-deepening negamax search, with
	// StaticSolver as its depth-0 leaf and non-fully-expanded fallback
	// (DESIGN.md's "one recursive solver" Open Question resolution).
	Recursive
	// VCF runs solver.SolveVCF: a cheap forcing-fours-only pre-pass.
	VCF
)

// Task is the SearchTask consumed and filled by Solve (spec.md §6): a
// board position in, and a proven/estimated verdict plus candidate edges
// out, ready for the MCTS EdgeGenerator to consume.
type Task struct {
	Score      board.Score
	Value      board.Value
	Edges      []board.Move
	MustDefend bool
	Ready      bool
}

// Evaluator is the external NNUE collaborator consumed at TSS leaves
// (spec.md §4.9's contract). Refresh rebuilds from scratch; Update
// synchronizes after the single most recent AddMove/UndoMove on c;
// Forward is pure and returns a scalar in [-1, 1] from the current side
// to move's perspective.
type Evaluator interface {
	Refresh(c *calc.Calculator)
	Update(c *calc.Calculator)
	Forward() float64
}

// Config configures a ThreatSpaceSearch instance.
type Config struct {
	// MaxDepth is the ceiling iterative deepening climbs to.
	MaxDepth int
	// InitialBudget seeds the position-budget auto-tuner.
	InitialBudget int
	// TargetSpeed is the auto-tuner's desired positions/sec.
	TargetSpeed float64
	// StackCapacity sizes the movegen.ActionStack arena shared by every
	// recursion level of one search.
	StackCapacity int
	// Evaluator is consulted at leaves when the position is not already
	// decided by StaticSolver. May be nil, in which case evalFallback is
	// used (spec.md §4.8's "when no NN is available" clause).
	Evaluator Evaluator
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 20
	}
	if c.InitialBudget <= 0 {
		c.InitialBudget = 50_000
	}
	if c.TargetSpeed <= 0 {
		c.TargetSpeed = 200_000
	}
	if c.StackCapacity <= 0 {
		c.StackCapacity = 8192
	}
	return c
}

// ThreatSpaceSearch is one worker thread's private TSS instance (spec.md
// §5: "each thread owns its own ... ThreatSpaceSearch instance"). It is
// not safe for concurrent use; the transposition table it's given is.
type ThreatSpaceSearch struct {
	calc      *calc.Calculator
	table     *tt.Table
	evaluator Evaluator
	maxDepth  int

	stack *movegen.ActionStack
	killers [MaxPly][killerSlots]board.Move

	budget *positionBudget
	tuner  *positionBudgetTuner

	rootEdges      []board.Move
	rootMustDefend bool
}

// New builds a ThreatSpaceSearch sharing table and cfg.Evaluator but
// owning its own calculator, action arena and killer ring.
func New(c *calc.Calculator, table *tt.Table, cfg Config) *ThreatSpaceSearch {
	cfg = cfg.withDefaults()
	return &ThreatSpaceSearch{
		calc:      c,
		table:     table,
		evaluator: cfg.Evaluator,
		maxDepth:  cfg.MaxDepth,
		stack:     movegen.NewActionStack(cfg.StackCapacity),
		budget:    &positionBudget{},
		tuner:     newPositionBudgetTuner(cfg.InitialBudget, cfg.TargetSpeed),
	}
}

// Calculator returns the search's private calculator, so callers can
// drive it to the position to solve before calling Solve.
func (s *ThreatSpaceSearch) Calculator() *calc.Calculator { return s.calc }

// Solve fills task per spec.md §6's TSS interface: `solve(task, mode,
// max_positions) → fills task.score, task.value, task.edges,
// task.must_defend; may mark task "ready"`. maxPositions == 0 is the
// spec's minimum search: StaticSolver's result only, no negamax node is
// expanded. A negative maxPositions lets the auto-tuner's current
// recommendation stand.
func (s *ThreatSpaceSearch) Solve(task *Task, mode Mode, maxPositions int) {
	switch mode {
	case Basic, Static:
		s.fillFromStatic(task, solver.Solve(s.calc))
	case VCF:
		s.fillFromStatic(task, solver.SolveVCF(s.calc, s.maxDepth))
	default: // Recursive
		s.solveRecursive(task, maxPositions)
	}
}

func (s *ThreatSpaceSearch) solveRecursive(task *Task, maxPositions int) {
	if maxPositions == 0 {
		// spec.md §8: "minimum search with max_positions = 0" returns the
		// static-solver result only.
		s.fillFromStatic(task, solver.Solve(s.calc))
		return
	}
	if maxPositions < 0 {
		maxPositions = s.tuner.Current()
	}
	s.budget.Reset(maxPositions)
	for ply := range s.killers {
		s.killers[ply] = [killerSlots]board.Move{}
	}
	if s.evaluator != nil {
		s.evaluator.Refresh(s.calc)
	}

	start := time.Now()
	var score board.Score
	var best board.Move
	for depth := depthStep; depth <= s.maxDepth; depth += depthStep {
		score, best = s.negamax(depth, 0, board.Score(-board.ScoreInfinity), board.Score(board.ScoreInfinity), true)
		if score.IsWin() || score.IsLoss() || s.budget.Exhausted() {
			break
		}
	}
	s.tuner.Record(s.budget.Spent(), time.Since(start))

	s.fillFromSearch(task, score, best)
}

// negamax is the core search: returns the score of the position (from
// the perspective of the side to move when negamax was called) and the
// move that achieves it.
func (s *ThreatSpaceSearch) negamax(depth, ply int, alpha, beta board.Score, isRoot bool) (board.Score, board.Move) {
	s.budget.Consume()

	// StaticSolver doubles as both the depth-0 leaf and a standalone
	// fast path consulted at every node (DESIGN.md's "one recursive
	// solver" resolution): a position it can already prove is never
	// worth expanding further, at the root or anywhere else.
	if res := solver.Solve(s.calc); res.Proven {
		if isRoot {
			s.rootEdges = s.rootEdges[:0]
			if !res.Best.IsNone() {
				s.rootEdges = append(s.rootEdges, res.Best)
			}
			s.rootMustDefend = false
		}
		return res.Score, res.Best
	}

	key := s.calc.Hash()

	var ttMove board.Move
	if entry, ok := s.table.Seek(key); ok {
		ttMove = entry.Move
		if !isRoot && int(entry.Depth) >= depth {
			adjusted := entry.Score.IncreaseDistance()
			switch entry.Bound {
			case tt.BoundExact:
				return adjusted, entry.Move
			case tt.BoundLower:
				if adjusted > alpha {
					alpha = adjusted
				}
			case tt.BoundUpper:
				if adjusted < beta {
					beta = adjusted
				}
			}
			if alpha >= beta {
				return adjusted, entry.Move
			}
		}
	}

	if depth <= 0 || s.budget.Exhausted() {
		return s.evaluate(), board.NoMove
	}

	list := movegen.Generate(movegen.Reduced, s.calc, s.stack)
	movegen.Order(list, ttMove, s.killers[ply][:])

	if list.Len() == 0 {
		list.Release()
		return s.evaluate(), board.NoMove
	}

	if isRoot {
		s.rootEdges = append(s.rootEdges[:0], list.Moves()...)
		s.rootMustDefend = list.MustDefend
	}

	originalAlpha := alpha
	fullyExpanded := list.FullyExpanded
	bestScore := board.Score(-board.ScoreInfinity)
	bestMove := board.NoMove

	for i := 0; i < list.Len(); i++ {
		m := list.At(i)
		if err := s.calc.AddMove(m); err != nil {
			continue
		}
		if s.evaluator != nil {
			s.evaluator.Update(s.calc)
		}
		childScore, _ := s.negamax(depth-1, ply+1, beta.Negate(), alpha.Negate(), false)
		s.calc.UndoMove(m)
		if s.evaluator != nil {
			s.evaluator.Update(s.calc)
		}

		score := childScore.Negate().IncreaseDistance()
		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if score >= beta || score.IsWin() {
			s.recordKiller(ply, m)
			break
		}
		if s.budget.Exhausted() {
			break
		}
	}
	list.Release()

	if bestMove.IsNone() {
		return s.evaluate(), board.NoMove
	}

	// Fallback (spec.md §4.8): never declare a loss on a position the
	// generator did not fully expand.
	if bestScore.IsLoss() && !fullyExpanded {
		bestScore = s.evaluate()
	}

	bound := tt.BoundExact
	switch {
	case bestScore <= originalAlpha:
		bound = tt.BoundUpper
	case bestScore >= beta:
		bound = tt.BoundLower
	}
	s.table.Insert(key, tt.Entry{
		Move:       bestMove,
		Score:      bestScore,
		Bound:      bound,
		Depth:      uint8(depth),
		Generation: s.table.CurrentGeneration(),
	})

	return bestScore, bestMove
}

// evaluate is consulted at remaining == 0, whenever the budget is
// exhausted, and as the never-declare-a-loss fallback. The position is
// already known not to be proven — negamax checks StaticSolver at every
// node entry — so this only needs the NNUE evaluator or, lacking one,
// the hand-crafted weighted histogram (spec.md §4.8).
func (s *ThreatSpaceSearch) evaluate() board.Score {
	if s.evaluator != nil {
		v := s.evaluator.Forward()
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		return board.Eval(int(v * float64(board.EvalBound)))
	}
	return evalFallback(s.calc)
}

// recordKiller pushes m to the front of ply's killer ring, dropping the
// oldest slot; a move already present is left in place.
func (s *ThreatSpaceSearch) recordKiller(ply int, m board.Move) {
	if ply < 0 || ply >= MaxPly || m.IsNone() {
		return
	}
	slots := &s.killers[ply]
	for _, k := range slots {
		if k.Equal(m) {
			return
		}
	}
	for i := killerSlots - 1; i > 0; i-- {
		slots[i] = slots[i-1]
	}
	slots[0] = m
}

func (s *ThreatSpaceSearch) fillFromSearch(task *Task, score board.Score, best board.Move) {
	task.Score = score
	task.MustDefend = s.rootMustDefend
	task.Edges = append(task.Edges[:0], s.rootEdges...)
	moveToFront(task.Edges, best)
	task.Value = valueFromScore(score)
	task.Ready = score.IsProven()
}

func (s *ThreatSpaceSearch) fillFromStatic(task *Task, res solver.Result) {
	task.Score = res.Score
	task.Ready = res.Proven
	task.MustDefend = !res.Proven && !res.Best.IsNone()
	if res.Best.IsNone() {
		task.Edges = task.Edges[:0]
	} else {
		task.Edges = append(task.Edges[:0], res.Best)
	}
	task.Value = valueFromScore(task.Score)
}

func moveToFront(moves []board.Move, best board.Move) {
	if best.IsNone() {
		return
	}
	for i, m := range moves {
		if m.Equal(best) {
			if i != 0 {
				moves[i] = moves[0]
				moves[0] = best
			}
			return
		}
	}
}

// valueFromScore maps a Score onto the MCTS-layer (win, draw, loss)
// triple (spec.md §3): proven outcomes become degenerate triples, and a
// non-proven evaluation is linearly rescaled into a soft win/loss split.
func valueFromScore(score board.Score) board.Value {
	if score.IsProven() {
		return board.FromProven(score.ProvenValue())
	}
	p := (float64(score) + float64(board.EvalBound)) / (2 * float64(board.EvalBound))
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return board.Value{Win: p, Loss: 1 - p}
}

package mcts

import (
	"math/rand"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/tss"
)

// PolicyGrid is the evaluator's policy output over board squares,
// spec's "policy[R×C]" that EdgeGenerator.Base turns into per-move priors.
type PolicyGrid struct {
	Rows, Cols int
	Values     []float64 // row-major, length Rows*Cols
}

// At returns the policy weight for (r, c).
func (g PolicyGrid) At(r, c int) float64 {
	if g.Values == nil {
		return 0
	}
	return g.Values[r*g.Cols+c]
}

// EdgeGenerator fills a fresh Node's edges for a position, given the
// evaluator's policy grid and (optionally) TSS's verdict for the same
// position.
type EdgeGenerator interface {
	Generate(b *board.Board, side board.Sign, task *tss.Task, policy PolicyGrid, isRoot bool) []Edge
}

// GeneratorConfig bounds and tunes every generator variant.
type GeneratorConfig struct {
	PolicyThreshold float64 // spec's policy_threshold: priors below this are pruned
	MaxEdges        int     // spec's max_edges cap after pruning

	// NoiseWeight mixes a noise matrix into the root policy (Noisy).
	NoiseWeight float64
	Rng         *rand.Rand
}

// Base is the default generator: edges from policy prior above
// PolicyThreshold, pruned to MaxEdges, with per-edge terminal checks
// (spec's "apply the move, test the rules for an immediate 5-in-a-row").
// Proven edges get the policy override: LOSS -> prior 0 value (0,0,1);
// WIN -> prior very large, value (1,0,0); DRAW -> value (0,1,0).
type Base struct {
	Cfg GeneratorConfig
}

func (g Base) Generate(b *board.Board, side board.Sign, task *tss.Task, policy PolicyGrid, isRoot bool) []Edge {
	candidates := candidateMoves(b, side, task)
	edges := make([]Edge, 0, len(candidates))

	for _, m := range candidates {
		prior := policy.At(int(m.Row), int(m.Col))
		win, loss, draw := terminalCheck(b, m)
		switch {
		case loss:
			edges = append(edges, Edge{Move: m, Prior: 0, Value: board.Value{Loss: 1}, Score: board.LossIn(1)})
			continue
		case win:
			edges = append(edges, Edge{Move: m, Prior: 1e6, Value: board.Value{Win: 1}, Score: board.WinIn(1)})
			continue
		case draw:
			edges = append(edges, Edge{Move: m, Prior: prior, Value: board.Value{Draw: 1}})
			continue
		}
		if prior < g.Cfg.PolicyThreshold {
			continue
		}
		edges = append(edges, Edge{Move: m, Prior: prior})
	}

	edges = prunePriors(edges, g.Cfg.MaxEdges)
	normalizePriors(edges)
	return edges
}

// Solver uses TSS's own prior edges verbatim whenever the task reports
// must_defend or is marked ready, since TSS has already computed the
// forcing set more precisely than a raw policy threshold could; otherwise
// it falls back to Base's policy-driven generation.
type Solver struct {
	Base Base
}

func (g Solver) Generate(b *board.Board, side board.Sign, task *tss.Task, policy PolicyGrid, isRoot bool) []Edge {
	if task != nil && (task.MustDefend || task.Ready) && len(task.Edges) > 0 {
		edges := make([]Edge, 0, len(task.Edges))
		for _, m := range task.Edges {
			prior := policy.At(int(m.Row), int(m.Col))
			edges = append(edges, Edge{Move: m, Prior: prior})
		}
		if task.Ready && task.Score.IsProven() {
			v := board.FromProven(task.Score.ProvenValue())
			for i := range edges {
				edges[i].Value = v
			}
		}
		normalizePriors(edges)
		return edges
	}
	return g.Base.Generate(b, side, task, policy, isRoot)
}

// Noisy mixes a noise matrix into the root policy with weight w before
// delegating to Inner; at non-root nodes it is a pass-through.
type Noisy struct {
	Inner       EdgeGenerator
	Weight      float64
	NoiseMatrix PolicyGrid
}

func (g Noisy) Generate(b *board.Board, side board.Sign, task *tss.Task, policy PolicyGrid, isRoot bool) []Edge {
	if !isRoot || g.NoiseMatrix.Values == nil {
		return g.Inner.Generate(b, side, task, policy, isRoot)
	}
	mixed := PolicyGrid{Rows: policy.Rows, Cols: policy.Cols, Values: make([]float64, len(policy.Values))}
	for i := range mixed.Values {
		mixed.Values[i] = (1-g.Weight)*policy.Values[i] + g.Weight*g.NoiseMatrix.Values[i]
	}
	return g.Inner.Generate(b, side, task, mixed, isRoot)
}

// RootFilter narrows the edges Inner has generated, keeping those Keep
// accepts, implementing Balanced/CenterExcluding/CenterOnly/
// SymmetricalExcluding, all of which act only at the root and fall through
// unchanged everywhere else. If Keep rejects every edge, Inner's list is
// returned unfiltered.
type RootFilter struct {
	Inner EdgeGenerator
	Keep  func(b *board.Board, m board.Move) bool
}

func (g RootFilter) Generate(b *board.Board, side board.Sign, task *tss.Task, policy PolicyGrid, isRoot bool) []Edge {
	edges := g.Inner.Generate(b, side, task, policy, isRoot)
	if !isRoot || g.Keep == nil {
		return edges
	}
	filtered := edges[:0]
	for _, e := range edges {
		if g.Keep(b, e.Move) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return edges
	}
	normalizePriors(filtered)
	return filtered
}

// CenterOnlyFilter keeps only moves within radius of the board center.
func CenterOnlyFilter(radius int) func(*board.Board, board.Move) bool {
	return func(b *board.Board, m board.Move) bool {
		cr, cc := b.Center()
		return abs(int(m.Row)-cr) <= radius && abs(int(m.Col)-cc) <= radius
	}
}

// CenterExcludingFilter keeps only moves outside radius of center.
func CenterExcludingFilter(radius int) func(*board.Board, board.Move) bool {
	inner := CenterOnlyFilter(radius)
	return func(b *board.Board, m board.Move) bool { return !inner(b, m) }
}

// SymmetricalExcludingFilter drops one of every pair of moves related by
// 180-degree rotation about the center, keeping the canonical
// lexicographically-earlier half so symmetric openings aren't
// double-counted in the root policy.
func SymmetricalExcludingFilter() func(*board.Board, board.Move) bool {
	return func(b *board.Board, m board.Move) bool {
		mr, mc := int8(b.Rows-1)-m.Row, int8(b.Cols-1)-m.Col
		if mr == m.Row && mc == m.Col {
			return true
		}
		return m.Row < mr || (m.Row == mr && m.Col < mc)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// candidateMoves returns task's precomputed edges when present, otherwise
// every empty square on the board.
func candidateMoves(b *board.Board, side board.Sign, task *tss.Task) []board.Move {
	if task != nil && len(task.Edges) > 0 {
		return task.Edges
	}
	moves := make([]board.Move, 0, b.Rows*b.Cols)
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if b.IsEmpty(r, c) {
				moves = append(moves, board.Move{Row: int8(r), Col: int8(c), Sign: side})
			}
		}
	}
	return moves
}

// terminalCheck applies m to a scratch copy of b and reports whether it
// wins outright or fills the board into a draw. Forbidden-move exclusion
// for the mover is package calc's job; task.Edges is already filtered to
// legal squares by the time Base sees it.
func terminalCheck(b *board.Board, m board.Move) (win, loss, draw bool) {
	row, col := int(m.Row), int(m.Col)
	scratch := b.Clone()
	scratch.Set(row, col, m.Sign)
	if hasFiveInARow(scratch, row, col, m.Sign) {
		win = true
		return
	}
	if scratch.IsFull() {
		draw = true
	}
	return
}

// hasFiveInARow checks the four lines through (row, col) for a run of
// WinLength consecutive stones of sign, honoring overline rules.
func hasFiveInARow(b *board.Board, row, col int, sign board.Sign) bool {
	need := b.Rules.WinLength()
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		count := 1
		for i := 1; i < b.Rows+b.Cols; i++ {
			r, c := row+d[0]*i, col+d[1]*i
			if !b.InBounds(r, c) || b.At(r, c) != sign {
				break
			}
			count++
		}
		for i := 1; i < b.Rows+b.Cols; i++ {
			r, c := row-d[0]*i, col-d[1]*i
			if !b.InBounds(r, c) || b.At(r, c) != sign {
				break
			}
			count++
		}
		if count == need || (count > need && b.Rules.OverlineWins(sign)) {
			return true
		}
	}
	return false
}

func prunePriors(edges []Edge, maxEdges int) []Edge {
	if maxEdges <= 0 || len(edges) <= maxEdges {
		return edges
	}
	for i := 1; i < len(edges); i++ {
		e := edges[i]
		j := i - 1
		for j >= 0 && edges[j].Prior < e.Prior {
			edges[j+1] = edges[j]
			j--
		}
		edges[j+1] = e
	}
	return edges[:maxEdges]
}

// normalizePriors scales priors to sum to 1, distributing uniformly if
// the sum is 0 (spec's "All generators finish by normalizing priors").
func normalizePriors(edges []Edge) {
	sum := 0.0
	for _, e := range edges {
		sum += e.Prior
	}
	if sum == 0 {
		if len(edges) == 0 {
			return
		}
		uniform := 1 / float64(len(edges))
		for i := range edges {
			edges[i].Prior = uniform
		}
		return
	}
	for i := range edges {
		edges[i].Prior /= sum
	}
}

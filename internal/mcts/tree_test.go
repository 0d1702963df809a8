package mcts

import (
	"math/rand"
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/tss"
	"github.com/hailam/gomokusearch/internal/tt"
)

// uniformEvaluator is a stand-in Evaluator that reports a flat policy and
// a neutral value, enough to drive Tree.Simulate end to end without a
// real trained network.
type uniformEvaluator struct{}

func (uniformEvaluator) RequestEvaluation(b *board.Board, side board.Sign) (board.Value, PolicyGrid, ValueGrid, float64) {
	n := b.Rows * b.Cols
	values := make([]float64, n)
	weight := 1 / float64(n)
	for i := range values {
		values[i] = weight
	}
	return board.Value{Win: 0.5, Draw: 0.3, Loss: 0.2}, PolicyGrid{Rows: b.Rows, Cols: b.Cols, Values: values}, ValueGrid{}, 10
}

func newTestWorker(t *testing.T, b *board.Board, side board.Sign) *Worker {
	t.Helper()
	c := calc.New(b.Rules)
	c.SetBoard(b, side)
	table := tt.New(1024)
	search := tss.New(c, table, tss.Config{MaxDepth: 4, StackCapacity: 1024})
	return &Worker{
		Calc:         c,
		Search:       search,
		Eval:         uniformEvaluator{},
		Mode:         tss.Basic,
		MaxPositions: 0,
		Rng:          rand.New(rand.NewSource(42)),
	}
}

func TestSetRootCreatesEdgesForEmptyBoard(t *testing.T) {
	b := board.NewBoard(5, 5, board.Freestyle)
	cache := NewNodeCache(64)
	tree := NewTree(cache, Config{})

	task := &tss.Task{}
	policy := PolicyGrid{Rows: 5, Cols: 5, Values: make([]float64, 25)}
	for i := range policy.Values {
		policy.Values[i] = 1.0 / 25
	}

	root := tree.SetRoot(b, board.Cross, task, policy)
	if root == nil || len(root.Edges) == 0 {
		t.Fatalf("expected SetRoot to populate root edges on an empty board")
	}
	if !root.IsRoot() {
		t.Fatalf("expected the node returned by SetRoot to be marked as root")
	}
}

func TestSimulateRunsOneCycleAndUpdatesRoot(t *testing.T) {
	b := board.NewBoard(5, 5, board.Freestyle)
	cache := NewNodeCache(64)
	tree := NewTree(cache, Config{Selector: PUCT{C: 1.5}})

	task := &tss.Task{}
	policy := PolicyGrid{Rows: 5, Cols: 5, Values: make([]float64, 25)}
	for i := range policy.Values {
		policy.Values[i] = 1.0 / 25
	}
	root := tree.SetRoot(b, board.Cross, task, policy)

	w := newTestWorker(t, b, board.Cross)
	tree.Simulate(w)

	if root.Visits == 0 {
		t.Fatalf("expected Simulate to register at least one visit on the root")
	}

	// The worker's calculator must return to the root position after
	// Simulate, ready for the next call.
	if w.Calc.Board().StoneCount() != b.StoneCount() {
		t.Fatalf("expected the worker calculator to be rewound to the root position after Simulate")
	}
}

func TestMultipleSimulationsGrowTheCache(t *testing.T) {
	b := board.NewBoard(5, 5, board.Freestyle)
	cache := NewNodeCache(64)
	tree := NewTree(cache, Config{Selector: PUCT{C: 1.5}})

	task := &tss.Task{}
	policy := PolicyGrid{Rows: 5, Cols: 5, Values: make([]float64, 25)}
	for i := range policy.Values {
		policy.Values[i] = 1.0 / 25
	}
	tree.SetRoot(b, board.Cross, task, policy)

	w := newTestWorker(t, b, board.Cross)
	for i := 0; i < 5; i++ {
		tree.Simulate(w)
	}

	if cache.Len() == 0 {
		t.Fatalf("expected repeated simulation to populate the node cache")
	}
}

func TestUpdateProvenScoreDoesNotMarkNodeLossWithUnprovenSibling(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 2)
	n.Edges[0].Score = board.LossIn(1)
	// Edges[1] is left at its zero value, which is not a proven score.

	updateProvenScore(&n.Edges[0], n)

	if n.Score.IsLoss() {
		t.Fatalf("expected node Score not to be a proven loss while a sibling edge is unproven, got %v", n.Score)
	}
	if n.FullyExpanded() {
		t.Fatalf("expected node not to be fully expanded with one edge still unproven")
	}
}

func TestUpdateProvenScoreMarksNodeLossOnceEveryEdgeIsProvenLoss(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 2)
	n.Edges[0].Score = board.LossIn(1)
	n.Edges[1].Score = board.LossIn(2)

	updateProvenScore(&n.Edges[0], n)
	updateProvenScore(&n.Edges[1], n)

	if !n.Score.IsLoss() {
		t.Fatalf("expected node Score to be a proven loss once every edge is proven lost, got %v", n.Score)
	}
	if !n.FullyExpanded() {
		t.Fatalf("expected node to be fully expanded once every edge is proven")
	}
}

func TestUpdateProvenScoreAdoptsAWinImmediately(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 2)
	n.Edges[0].Score = board.WinIn(3)
	// Edges[1] stays unproven: a single proven win does not need to wait
	// for every sibling to resolve.

	updateProvenScore(&n.Edges[0], n)

	if !n.Score.IsWin() {
		t.Fatalf("expected a single proven winning edge to mark the node a win immediately, got %v", n.Score)
	}
}

// fixedIndexSelector always picks the same edge index, a deterministic
// stand-in for Balanced.Above.
type fixedIndexSelector int

func (s fixedIndexSelector) Choose(n *Node, rng *rand.Rand) int { return int(s) }

func TestSelectThreadsRealDescentDepthIntoBalanced(t *testing.T) {
	pool := newEdgePool()

	root := newNode(pool, 2)
	root.Edges[0] = Edge{Move: board.Move{Row: 0, Col: 0, Sign: board.Cross}, Value: board.Value{Win: 0.5, Loss: 0.5}}
	root.Edges[1] = Edge{Move: board.Move{Row: 0, Col: 1, Sign: board.Cross}, Value: board.Value{Win: 0.9, Loss: 0.05}}

	child := newNode(pool, 2)
	// Matches root.Edges[0].Value's expectation once inverted, so the
	// leak check doesn't intercept the descent before depth matters.
	child.Value = board.Value{Win: 0.5, Loss: 0.5}
	child.Edges[0] = Edge{Move: board.Move{Row: 1, Col: 0, Sign: board.Circle}, Value: board.Value{Win: 0.9, Loss: 0.05}}
	child.Edges[1] = Edge{Move: board.Move{Row: 1, Col: 1, Sign: board.Circle}, Value: board.Value{Win: 0.5, Loss: 0.5}}
	root.Edges[0].child = child

	// BalanceDepth: 1 means depth 0 uses the balance rule and depth >= 1
	// delegates to Above. Above always picks edge 0 here, which is the
	// *less* balanced edge at the child, so the two rules disagree and
	// expose whether Select really advanced the depth counter.
	sel := Balanced{BalanceDepth: 1, Above: fixedIndexSelector(0)}

	cache := NewNodeCache(64)
	tree := NewTree(cache, Config{Selector: sel})
	tree.root = root
	tree.rootSign = board.Cross

	c := calc.New(board.Freestyle)
	c.SetBoard(board.NewBoard(3, 3, board.Freestyle), board.Cross)

	path, outcome := tree.Select(c, rand.New(rand.NewSource(1)))
	if outcome != ReachedLeaf {
		t.Fatalf("expected Select to reach the leaf below the child, got outcome %v", outcome)
	}
	if len(path) != 2 {
		t.Fatalf("expected a two-step path, got %d steps", len(path))
	}
	if path[0].edge != 0 {
		t.Fatalf("expected depth 0 to apply the balance rule and pick edge 0, got %d", path[0].edge)
	}
	if path[1].edge != 0 {
		t.Fatalf("expected depth 1 to delegate to Above (edge 0) instead of reapplying the balance rule, got %d — Select is not threading descent depth into Choose", path[1].edge)
	}
}

func TestCancelVirtualLossClearsMarkers(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 1)
	n.Edges[0].IncreaseVirtualLoss()
	n.Edges[0].beingExpanded = true

	cache := NewNodeCache(4)
	tree := NewTree(cache, Config{})
	path := []pathStep{{node: n, edge: 0}}

	tree.CancelVirtualLoss(path)

	if n.Edges[0].effectiveVisits() != 0 {
		t.Fatalf("expected CancelVirtualLoss to clear the virtual loss, got %v", n.Edges[0].effectiveVisits())
	}
	if n.Edges[0].beingExpanded {
		t.Fatalf("expected CancelVirtualLoss to clear beingExpanded")
	}
}

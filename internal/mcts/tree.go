package mcts

import (
	"math/rand"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/tss"
)

// SelectOutcome reports how a Select descent ended.
type SelectOutcome int

const (
	// ReachedLeaf means Select hit a missing child: the edge is now
	// marked "being expanded" and Expand should run next.
	ReachedLeaf SelectOutcome = iota
	// ReachedProvenEdge means the last chosen edge carries a proven
	// outcome (or the node reached has no edges, or the edge's move could
	// not be played), so the simulation can back up immediately without
	// expanding or evaluating anything new.
	ReachedProvenEdge
	// InformationLeak means an edge's stored value and its child node's
	// discovered value disagree by more than InformationLeakThreshold;
	// CorrectInformationLeak must run before backup.
	InformationLeak
)

// pathStep is one (node, edge index) pair along a Select descent.
type pathStep struct {
	node *Node
	edge int
}

// Config tunes one Tree instance.
type Config struct {
	Selector                 EdgeSelector
	Generator                EdgeGenerator
	InformationLeakThreshold float64
}

func (c Config) withDefaults() Config {
	if c.Selector == nil {
		c.Selector = PUCT{C: 1.5}
	}
	if c.Generator == nil {
		c.Generator = Base{Cfg: GeneratorConfig{PolicyThreshold: 0.001, MaxEdges: 40}}
	}
	if c.InformationLeakThreshold <= 0 {
		c.InformationLeakThreshold = 0.3
	}
	return c
}

// Tree is the shared MCTS orchestrator of spec's §4.11: one Tree, one
// NodeCache and one SharedHashTable (tt.Table, owned by each worker's
// ThreatSpaceSearch) serve every worker goroutine. Tree itself only
// coordinates the Select/Expand/Backup protocol; board mutation happens
// on each worker's private calculator.
type Tree struct {
	lock  TwoTierLock
	cache *NodeCache
	cfg   Config

	root      *Node
	rootSign  board.Sign
}

// NewTree builds a Tree backed by cache, ready to be rooted via SetRoot.
func NewTree(cache *NodeCache, cfg Config) *Tree {
	return &Tree{cache: cache, cfg: cfg.withDefaults()}
}

// SetRoot (re)roots the tree at (b, side): seeks or creates the NodeCache
// entry and prunes every transposition that could not have preceded it
// (spec's cleanup), so a tree can be reused move over move.
func (t *Tree) SetRoot(b *board.Board, side board.Sign, task *tss.Task, policy PolicyGrid) *Node {
	t.lock.LockHigh()
	defer t.lock.UnlockHigh()

	t.cache.Cleanup(b)
	n := t.cache.Seek(b, side)
	if n == nil {
		edges := t.cfg.Generator.Generate(b, side, task, policy, true)
		n = t.cache.Insert(b, side, len(edges))
		copy(n.Edges, edges)
		if len(n.Edges) == 0 {
			n.MarkAsFullyExpanded()
		}
	}
	n.MarkAsRoot()
	t.root = n
	t.rootSign = side
	return n
}

// Root returns the current root node, or nil before SetRoot is called.
func (t *Tree) Root() *Node { return t.root }

// RootSign returns the side to move at the current root.
func (t *Tree) RootSign() board.Sign { return t.rootSign }

// Select descends from the root, applying cfg.Selector at each node,
// bumping virtual losses along the way, until it reaches a missing child
// (ReachedLeaf), an edge with a proven outcome, a node with no edges or an
// edge whose move cannot be played (ReachedProvenEdge), or detects an
// information leak. It mutates c (the
// calling worker's private calculator) to match the path so Expand and
// evaluation see the right position, and returns the path for Backup.
func (t *Tree) Select(c *calc.Calculator, rng *rand.Rand) ([]pathStep, SelectOutcome) {
	t.lock.LockLow()
	defer t.lock.UnlockLow()

	var path []pathStep
	node := t.root
	depth := 0

	for {
		if len(node.Edges) == 0 {
			return path, ReachedProvenEdge
		}
		idx := Choose(t.cfg.Selector, node, rng, depth)
		edge := &node.Edges[idx]
		node.mu.Lock()
		edge.IncreaseVirtualLoss()
		node.mu.Unlock()
		path = append(path, pathStep{node: node, edge: idx})

		if edge.Score.IsProven() {
			return path, ReachedProvenEdge
		}

		if err := c.AddMove(edge.Move); err != nil {
			return path, ReachedProvenEdge
		}

		if edge.child == nil {
			edge.beingExpanded = true
			return path, ReachedLeaf
		}

		child := edge.child
		if leaks(edge.Value, child.Value, t.cfg.InformationLeakThreshold) {
			return path, InformationLeak
		}
		node = child
		depth++
	}
}

func leaks(edgeValue, childValue board.Value, threshold float64) bool {
	d := edgeValue.Expectation() - childValue.Invert().Expectation()
	if d < 0 {
		d = -d
	}
	return d > threshold
}

// Expand runs cfg.Generator to fill a fresh Node for the position c is
// currently at (which Select has already advanced to via AddMove), wires
// it into the NodeCache and the just-taken edge, and returns it. If the
// generated edge list is empty, Expand marks the node fully expanded and
// derives a score from the side-to-move's plight (a stalemate-like draw
// by convention, since Gomoku's only empty-board terminal state with no
// edges is a full board).
func (t *Tree) Expand(c *calc.Calculator, path []pathStep, task *tss.Task, policy PolicyGrid, initialValue board.Value, initialMovesLeft float64) *Node {
	t.lock.LockLow()
	defer t.lock.UnlockLow()

	b := c.Board()
	side := c.SideToMove()
	n := t.cache.Seek(b, side)
	if n == nil {
		edges := t.cfg.Generator.Generate(b, side, task, policy, false)
		n = t.cache.Insert(b, side, len(edges))
		copy(n.Edges, edges)
		n.Value = initialValue
		n.MovesLeft = initialMovesLeft
	}

	if len(n.Edges) == 0 {
		n.MarkAsFullyExpanded()
		n.Value = board.Value{Draw: 1}
		n.Score = board.Draw
	} else if task != nil && task.Ready && task.Score.IsProven() {
		n.Value = board.FromProven(task.Score.ProvenValue())
		n.Score = task.Score
	}

	if len(path) > 0 {
		last := path[len(path)-1]
		edge := &last.node.Edges[last.edge]
		edge.child = n
		edge.beingExpanded = false
	}
	return n
}

// Backup propagates a value back up path. value/score are from the
// perspective of path's last step's mover (the node that owns the last
// edge, i.e. the side that played the move leading to whatever was just
// expanded or proven) — callers invert a freshly evaluated child's own
// perspective once before calling Backup. Each step further up alternates
// again, matching the alternating side to move along path. movesLeft
// seeds the moves_left running average. A proven score propagates as the
// edge/node Score via updateProvenScore; every virtual loss taken during
// Select is cleared here (the "being expanded" flag is cleared by Expand).
func (t *Tree) Backup(path []pathStep, value board.Value, movesLeft float64, score board.Score) {
	t.lock.LockLow()
	defer t.lock.UnlockLow()

	for i := len(path) - 1; i >= 0; i-- {
		step := path[i]
		edge := &step.node.Edges[step.edge]

		step.node.mu.Lock()
		edge.Value = edge.Value.WeightedAverage(value, 1/float64(edge.Visits+1))
		edge.UpdateVisit()
		edge.DecreaseVirtualLoss()
		step.node.mu.Unlock()

		step.node.UpdateValue(value)
		step.node.UpdateMovesLeft(movesLeft)

		if score.IsProven() {
			updateProvenScore(edge, step.node)
		}

		value = value.Invert()
		score = score.Negate()
		movesLeft++
	}
}

// updateProvenScore propagates a proven child outcome up through edge and
// node: the edge mirrors the child's proven score. The node's own Score
// adopts a proven WIN as soon as any single edge proves one, since finding
// one winning reply is enough regardless of unexplored siblings. A proven
// DRAW or LOSS, by contrast, is only safe to adopt once every edge is
// proven (node.FullyExpanded()) — otherwise an edge that is merely
// unproven so far, not proven bad, could still turn out to be a win, and
// marking the node LOSS would let the search prune a position that still
// has an unexamined winning reply (spec's "LOSS only if all children WIN
// AND node is fully expanded" invariant).
func updateProvenScore(edge *Edge, node *Node) {
	if edge.child != nil {
		edge.SetScore(edge.child.Score.Negate())
	}

	node.mu.Lock()
	defer node.mu.Unlock()

	best := board.Score(0)
	anyProven := false
	allProven := true
	for i := range node.Edges {
		s := node.Edges[i].Score
		if !s.IsProven() {
			allProven = false
			continue
		}
		if !anyProven || s > best {
			best, anyProven = s, true
		}
	}
	if allProven {
		node.fullyExpanded = true
	}

	switch {
	case anyProven && best.IsWin():
		node.Score = best
	case allProven && anyProven:
		node.Score = best
	}
}

// CorrectInformationLeak rewrites the offending edge's value to the
// inverted child value, and re-blends the upstream node's value using the
// weight ratio edge_visits/(node_visits+1), per spec's "Correct information
// leak" pass.
func (t *Tree) CorrectInformationLeak(path []pathStep) {
	t.lock.LockLow()
	defer t.lock.UnlockLow()

	for _, step := range path {
		edge := &step.node.Edges[step.edge]
		if edge.child == nil {
			continue
		}
		corrected := edge.child.Value.Invert()

		step.node.mu.Lock()
		edge.Value = corrected
		weight := float64(edge.Visits) / float64(step.node.Visits+1)
		step.node.Value = step.node.Value.WeightedAverage(corrected, weight)
		step.node.mu.Unlock()
	}
}

// CancelVirtualLoss undoes the virtual-loss increments and "being
// expanded" flags left by a Select that was abandoned (worker stopped,
// deadline hit) before reaching Backup, per spec's cancelVirtualLoss
// sweep.
func (t *Tree) CancelVirtualLoss(path []pathStep) {
	t.lock.LockLow()
	defer t.lock.UnlockLow()
	for _, step := range path {
		edge := &step.node.Edges[step.edge]
		edge.DecreaseVirtualLoss()
		edge.beingExpanded = false
	}
}

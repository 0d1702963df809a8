// Package mcts implements the PUCT-style Monte Carlo tree search that sits
// above package tss: a shared Tree of Nodes and Edges, searched by a pool of
// worker goroutines that each own a private calculator, ThreatSpaceSearch and
// NNUE evaluator, coordinated through a NodeCache keyed on compressed board
// state.
package mcts

import (
	"math"
	"sync"

	"github.com/hailam/gomokusearch/internal/board"
)

// Edge is one candidate move out of a Node: its prior probability, running
// value estimate, visit count and proven status. Edges are stored inline in
// a Node's edge slice, never individually heap-allocated.
type Edge struct {
	Move  board.Move
	Prior float64

	Value      board.Value
	ActionValue board.Value
	Visits     int32
	virtualLoss int32

	// Score holds a proven outcome once known (board.Score.IsProven()),
	// so EdgeSelector can treat this edge as a certain win or a dead loss
	// without re-deriving it from Value every time.
	Score board.Score

	// child caches the NodeCache lookup once the edge has been expanded
	// past, so Select doesn't need to re-hash on every visit.
	child *Node

	// beingExpanded marks an edge whose child lookup missed and is in
	// the process of being filled in by the worker that discovered it;
	// other workers steer away from it via the virtual loss bump applied
	// before release of the tree lock.
	beingExpanded bool
}

// UpdateValue averages v into the edge's running estimate, weighting the
// new sample by 1/(visits+1) (a running mean, matching Node.UpdateValue).
func (e *Edge) UpdateValue(v board.Value) {
	e.Value = e.Value.WeightedAverage(v, 1/float64(e.Visits+1))
}

// UpdateVisit increments the edge's visit count by one.
func (e *Edge) UpdateVisit() { e.Visits++ }

// IncreaseVirtualLoss and DecreaseVirtualLoss discourage (respectively,
// un-discourage) other workers from re-selecting this edge while a
// simulation is in flight along it.
func (e *Edge) IncreaseVirtualLoss() { e.virtualLoss++ }
func (e *Edge) DecreaseVirtualLoss() {
	if e.virtualLoss > 0 {
		e.virtualLoss--
	}
}

// SetScore records a proven outcome for the edge.
func (e *Edge) SetScore(s board.Score) { e.Score = s }

// effectiveVisits is the visit count EdgeSelector formulas divide by,
// inflated by in-flight virtual losses so concurrent workers spread out.
func (e *Edge) effectiveVisits() float64 {
	return float64(e.Visits) + float64(e.virtualLoss)
}

// q returns the edge's win-expectation, folding a style factor's draw
// weight in (spec's "win + s*draw" Q). When the edge is unvisited, the
// caller substitutes the parent's Q instead of calling this.
func (e *Edge) q(styleDrawWeight float64) float64 {
	return e.Value.Win + styleDrawWeight*e.Value.Draw
}

// Node holds a position's edges: every legal (or policy-pruned) move along
// with running search statistics. A Node may be reached by more than one
// parent Edge when two move orders transpose into the same position.
type Node struct {
	mu sync.Mutex

	Edges []Edge

	Value     board.Value
	MovesLeft float64
	Visits    int32

	root          bool
	fullyExpanded bool

	// Score mirrors the best proven outcome discovered among this
	// node's edges, from this node's side-to-move perspective.
	Score board.Score
}

// edgePool hands out []Edge backing arrays sized to a node's candidate
// count, recycled through NodeCache.cleanup/remove instead of left for the
// garbage collector — the MCTS analogue of package tt's bucket reuse.
type edgePool struct {
	mu   sync.Mutex
	free [][]Edge
}

func newEdgePool() *edgePool { return &edgePool{} }

func (p *edgePool) get(n int) []Edge {
	p.mu.Lock()
	for i, buf := range p.free {
		if cap(buf) >= n {
			p.free[i] = p.free[len(p.free)-1]
			p.free = p.free[:len(p.free)-1]
			p.mu.Unlock()
			buf = buf[:n]
			for j := range buf {
				buf[j] = Edge{}
			}
			return buf
		}
	}
	p.mu.Unlock()
	return make([]Edge, n)
}

func (p *edgePool) put(buf []Edge) {
	if buf == nil {
		return
	}
	p.mu.Lock()
	p.free = append(p.free, buf[:0])
	p.mu.Unlock()
}

// newNode allocates a Node with numEdges edges drawn from pool, all zeroed.
func newNode(pool *edgePool, numEdges int) *Node {
	return &Node{Edges: pool.get(numEdges)}
}

// UpdateValue averages v into the node's running value estimate, weighted
// by visit count (spec's update_value(v)).
func (n *Node) UpdateValue(v board.Value) {
	n.mu.Lock()
	n.Value = n.Value.WeightedAverage(v, 1/float64(n.Visits+1))
	n.Visits++
	n.mu.Unlock()
}

// UpdateMovesLeft averages m into the node's moves-left estimate the same
// way UpdateValue blends Value.
func (n *Node) UpdateMovesLeft(m float64) {
	n.mu.Lock()
	weight := 1 / float64(n.Visits+1)
	n.MovesLeft = n.MovesLeft*(1-weight) + m*weight
	n.mu.Unlock()
}

// MarkAsRoot flags this node as the search root, which EdgeGenerator's
// root-only filters and EdgeSelector's Noisy PUCT/Sequential Halving
// variants key off of.
func (n *Node) MarkAsRoot() { n.root = true }

// IsRoot reports whether MarkAsRoot was called on this node.
func (n *Node) IsRoot() bool { return n.root }

// MarkAsFullyExpanded records that this node has no edges left to
// generate at all (the zero-edge terminal case), so Expand's
// empty-edge-list rule has somewhere to set the flag unconditionally.
func (n *Node) MarkAsFullyExpanded() { n.fullyExpanded = true }

// FullyExpanded reports whether every one of this node's edges is proven,
// i.e. nothing remains that could still turn out to be a win. This is
// recomputed from the edges rather than cached, since edges accumulate
// proven scores incrementally during Backup; callers that need a
// consistent snapshot must hold node.mu themselves (updateProvenScore
// does). A node with zero edges is trivially fully expanded.
func (n *Node) FullyExpanded() bool {
	if n.fullyExpanded {
		return true
	}
	for i := range n.Edges {
		if !n.Edges[i].Score.IsProven() {
			return false
		}
	}
	return true
}

// SortEdges reorders the node's edges by visit count descending, for
// pretty-printing and PV reporting only; it never affects search.
func (n *Node) SortEdges() {
	n.mu.Lock()
	defer n.mu.Unlock()
	edges := n.Edges
	for i := 1; i < len(edges); i++ {
		e := edges[i]
		j := i - 1
		for j >= 0 && edges[j].Visits < e.Visits {
			edges[j+1] = edges[j]
			j--
		}
		edges[j+1] = e
	}
}

// BestEdge returns the index of the edge with the most visits, the
// default final-move tie-breaker (MaxVisit, spec's §4.12).
func (n *Node) BestEdge() int {
	best, bestVisits := -1, int32(-1)
	for i := range n.Edges {
		if n.Edges[i].Visits > bestVisits {
			best, bestVisits = i, n.Edges[i].Visits
		}
	}
	return best
}

// MaxValueEdge returns the index of the edge with the highest win
// expectation, breaking ties toward the most-visited (spec's MaxValue
// tie-breaker).
func (n *Node) MaxValueEdge() int {
	best := -1
	bestQ := math.Inf(-1)
	var bestVisits int32 = -1
	for i := range n.Edges {
		e := &n.Edges[i]
		q := e.Value.Expectation()
		if q > bestQ || (q == bestQ && e.Visits > bestVisits) {
			best, bestQ, bestVisits = i, q, e.Visits
		}
	}
	return best
}

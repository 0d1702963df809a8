package mcts

import (
	"math"
	"math/rand"
	"sort"
)

// EdgeSelector picks one of a Node's edges to descend through during
// Select. Implementations never choose a proven-loss edge while an
// alternative exists, and always choose a proven-win edge outright
// (selectProvenOverride handles that uniformly before delegating to
// Choose).
type EdgeSelector interface {
	Choose(n *Node, rng *rand.Rand) int
}

// depthAwareSelector is implemented by EdgeSelector variants whose choice
// depends on the ply depth at which they're invoked (currently only
// Balanced, which minimizes |Q_win - Q_loss| below BalanceDepth and
// delegates to Above past it). Selectors that don't implement it are
// depth-agnostic and are called through their plain Choose method.
type depthAwareSelector interface {
	ChooseAtDepth(n *Node, rng *rand.Rand, depth int) int
}

// Choose is the entry point Tree.Select calls: it first applies the
// proven-outcome override common to every variant, then falls back to
// sel's own formula only when no edge is already decided. depth is the
// ply depth of n within the current descent, threaded through to
// depthAwareSelector implementations.
func Choose(sel EdgeSelector, n *Node, rng *rand.Rand, depth int) int {
	if i, ok := selectProvenOverride(n); ok {
		return i
	}
	if da, ok := sel.(depthAwareSelector); ok {
		return da.ChooseAtDepth(n, rng, depth)
	}
	return sel.Choose(n, rng)
}

// selectProvenOverride returns a proven win immediately if one exists, and
// otherwise excludes proven losses from consideration by construction:
// EdgeSelector.Choose implementations skip edges with n.Edges[i].Score
// .IsLoss() whenever a non-loss alternative remains.
func selectProvenOverride(n *Node) (int, bool) {
	hasAlternative := false
	winIdx := -1
	for i := range n.Edges {
		s := n.Edges[i].Score
		switch {
		case s.IsWin():
			winIdx = i
		case !s.IsLoss():
			hasAlternative = true
		}
	}
	if winIdx >= 0 {
		return winIdx, true
	}
	_ = hasAlternative
	return 0, false
}

// skipLoss reports whether edge i should be skipped because it is a
// proven loss and some other edge is not.
func skipLoss(n *Node, i int) bool {
	if !n.Edges[i].Score.IsLoss() {
		return false
	}
	for j := range n.Edges {
		if j != i && !n.Edges[j].Score.IsLoss() {
			return true
		}
	}
	return false
}

// PUCT implements spec's primary selector:
// argmax Q(edge) + c*P(edge)*sqrt(N_node)/(1+N_edge), with Q defaulting to
// the parent's Q when an edge is still unvisited and scaled by a
// virtual-loss factor N/(N+VL).
type PUCT struct {
	C               float64
	StyleDrawWeight float64 // folds draw rate into Q as win + s*draw
}

func (p PUCT) Choose(n *Node, rng *rand.Rand) int {
	parentQ := n.Value.Win + p.StyleDrawWeight*n.Value.Draw
	sqrtN := math.Sqrt(float64(n.Visits) + 1)

	best, bestU := -1, math.Inf(-1)
	for i := range n.Edges {
		if skipLoss(n, i) {
			continue
		}
		e := &n.Edges[i]
		visits := e.effectiveVisits()
		q := parentQ
		if e.Visits > 0 {
			q = e.q(p.StyleDrawWeight)
			if e.virtualLoss > 0 {
				q *= float64(e.Visits) / visits
			}
		}
		u := q + p.C*e.Prior*sqrtN/(1+visits)
		if u > bestU {
			best, bestU = i, u
		}
	}
	return best
}

// UCT implements spec's secondary selector:
// argmax Q + c*sqrt(log(N_node)/(1+N_edge)) + P/(1+N_edge).
type UCT struct {
	C float64
}

func (u UCT) Choose(n *Node, rng *rand.Rand) int {
	logN := math.Log(math.Max(float64(n.Visits), 1))

	best, bestU := -1, math.Inf(-1)
	for i := range n.Edges {
		if skipLoss(n, i) {
			continue
		}
		e := &n.Edges[i]
		visits := e.effectiveVisits()
		q := e.Value.Expectation()
		score := q + u.C*math.Sqrt(logN/(1+visits)) + e.Prior/(1+visits)
		if score > bestU {
			best, bestU = i, score
		}
	}
	return best
}

// QHead is PUCT but Q always comes from the edge's action-value head,
// never substituted with the parent's Q on an unvisited edge.
type QHead struct {
	C float64
}

func (q QHead) Choose(n *Node, rng *rand.Rand) int {
	sqrtN := math.Sqrt(float64(n.Visits) + 1)
	best, bestU := -1, math.Inf(-1)
	for i := range n.Edges {
		if skipLoss(n, i) {
			continue
		}
		e := &n.Edges[i]
		visits := e.effectiveVisits()
		u := e.ActionValue.Expectation() + q.C*e.Prior*sqrtN/(1+visits)
		if u > bestU {
			best, bestU = i, u
		}
	}
	return best
}

// NoisyPUCT replaces priors with softmax(log(P) + Gumbel) at the root,
// falling back to plain PUCT at every other node.
type NoisyPUCT struct {
	Inner PUCT
}

func (np NoisyPUCT) Choose(n *Node, rng *rand.Rand) int {
	if !n.IsRoot() {
		return np.Inner.Choose(n, rng)
	}

	logits := make([]float64, len(n.Edges))
	maxLogit := math.Inf(-1)
	for i := range n.Edges {
		p := n.Edges[i].Prior
		if p <= 0 {
			p = 1e-9
		}
		g := gumbel(rng)
		logits[i] = math.Log(p) + g
		if logits[i] > maxLogit {
			maxLogit = logits[i]
		}
	}
	sum := 0.0
	weights := make([]float64, len(logits))
	for i, l := range logits {
		weights[i] = math.Exp(l - maxLogit)
		sum += weights[i]
	}

	best, bestU := -1, math.Inf(-1)
	sqrtN := math.Sqrt(float64(n.Visits) + 1)
	for i := range n.Edges {
		if skipLoss(n, i) {
			continue
		}
		prior := weights[i] / sum
		e := &n.Edges[i]
		visits := e.effectiveVisits()
		q := n.Value.Win + np.Inner.StyleDrawWeight*n.Value.Draw
		if e.Visits > 0 {
			q = e.q(np.Inner.StyleDrawWeight)
		}
		u := q + np.Inner.C*prior*sqrtN/(1+visits)
		if u > bestU {
			best, bestU = i, u
		}
	}
	return best
}

func gumbel(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u <= 0 {
		u = 1e-12
	}
	return -math.Log(-math.Log(u))
}

// SequentialHalving maintains, at the root only, a visit-count level that
// every action must reach before the lower-scoring half is pruned. Proven
// losses are excluded, proven wins rank ahead of every other edge, and the
// rest are ranked by expected value, so an unproven edge in the lower half
// is pruned. Below the root it falls back to Below.
type SequentialHalving struct {
	ExpectedVisits int
	Below          EdgeSelector
}

func (sh SequentialHalving) Choose(n *Node, rng *rand.Rand) int {
	if !n.IsRoot() {
		return sh.Below.Choose(n, rng)
	}

	alive := make([]int, 0, len(n.Edges))
	for i := range n.Edges {
		if !skipLoss(n, i) {
			alive = append(alive, i)
		}
	}
	if len(alive) == 0 {
		return 0
	}

	level := sh.ExpectedVisits
	if level <= 0 {
		level = 1
	}

	for {
		under := alive[:0]
		for _, i := range alive {
			if int(n.Edges[i].Visits) < level {
				under = append(under, i)
			}
		}
		if len(under) > 0 {
			return under[int(n.Visits)%len(under)]
		}

		if len(alive) <= 1 {
			return alive[0]
		}
		sort.SliceStable(alive, func(a, b int) bool {
			ea, eb := &n.Edges[alive[a]], &n.Edges[alive[b]]
			if ea.Score.IsWin() != eb.Score.IsWin() {
				return ea.Score.IsWin()
			}
			return ea.Value.Expectation() > eb.Value.Expectation()
		})
		keep := (len(alive) + 1) / 2
		alive = append([]int(nil), alive[:keep]...)
		level *= 2
	}
}

// Balanced picks, below balanceDepth plies, the edge minimizing
// |Q_win - Q_loss| to produce balanced training positions; above that
// depth it delegates to Above.
type Balanced struct {
	BalanceDepth int
	Above        EdgeSelector
}

func (b Balanced) ChooseAtDepth(n *Node, rng *rand.Rand, depth int) int {
	if depth >= b.BalanceDepth {
		return b.Above.Choose(n, rng)
	}
	best, bestDiff := -1, math.Inf(1)
	for i := range n.Edges {
		if skipLoss(n, i) {
			continue
		}
		e := &n.Edges[i]
		diff := math.Abs(e.Value.Win - e.Value.Loss)
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return b.Above.Choose(n, rng)
	}
	return best
}

// Choose implements EdgeSelector by delegating to ChooseAtDepth at depth
// 0, for callers that only have a plain EdgeSelector handle. Tree.Select
// instead type-asserts Balanced to depthAwareSelector and calls
// ChooseAtDepth directly with the real descent depth.
func (b Balanced) Choose(n *Node, rng *rand.Rand) int {
	return b.ChooseAtDepth(n, rng, 0)
}

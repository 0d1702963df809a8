package mcts

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
)

func TestNodeUpdateValueAveragesByVisits(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 1)

	n.UpdateValue(board.Value{Win: 1})
	if n.Value.Win != 1 {
		t.Fatalf("first update should set Value.Win to 1, got %v", n.Value)
	}
	n.UpdateValue(board.Value{Loss: 1})
	if n.Visits != 2 {
		t.Fatalf("expected 2 visits, got %d", n.Visits)
	}
	if n.Value.Win <= 0 || n.Value.Win >= 1 {
		t.Fatalf("expected averaged Value.Win strictly between 0 and 1, got %v", n.Value.Win)
	}
}

func TestSortEdgesOrdersByVisitsDescending(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 3)
	n.Edges[0] = Edge{Move: board.Move{Row: 0}, Visits: 3}
	n.Edges[1] = Edge{Move: board.Move{Row: 1}, Visits: 10}
	n.Edges[2] = Edge{Move: board.Move{Row: 2}, Visits: 1}

	n.SortEdges()

	if n.Edges[0].Visits != 10 || n.Edges[1].Visits != 3 || n.Edges[2].Visits != 1 {
		t.Fatalf("edges not sorted by visits descending: %+v", n.Edges)
	}
}

func TestBestEdgePicksMostVisited(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 3)
	n.Edges[0].Visits = 5
	n.Edges[1].Visits = 40
	n.Edges[2].Visits = 2

	if got := n.BestEdge(); got != 1 {
		t.Fatalf("BestEdge() = %d, want 1", got)
	}
}

func TestMaxValueEdgePrefersHigherExpectation(t *testing.T) {
	pool := newEdgePool()
	n := newNode(pool, 2)
	n.Edges[0].Value = board.Value{Win: 0.2}
	n.Edges[1].Value = board.Value{Win: 0.9}

	if got := n.MaxValueEdge(); got != 1 {
		t.Fatalf("MaxValueEdge() = %d, want 1", got)
	}
}

func TestEdgePoolReusesReleasedBuffers(t *testing.T) {
	pool := newEdgePool()
	buf := pool.get(8)
	pool.put(buf)
	second := pool.get(4)
	if cap(second) < 4 {
		t.Fatalf("expected reused buffer with capacity >= 4, got cap %d", cap(second))
	}
}

func TestVirtualLossRoundTrips(t *testing.T) {
	var e Edge
	e.IncreaseVirtualLoss()
	e.IncreaseVirtualLoss()
	if e.effectiveVisits() != 2 {
		t.Fatalf("expected 2 virtual losses reflected in effectiveVisits, got %v", e.effectiveVisits())
	}
	e.DecreaseVirtualLoss()
	if e.effectiveVisits() != 1 {
		t.Fatalf("expected 1 virtual loss after one decrease, got %v", e.effectiveVisits())
	}
}

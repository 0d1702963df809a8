package mcts

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
)

func mustBoard(t *testing.T, text string, rules board.GameRules) *board.Board {
	t.Helper()
	b, err := board.ParseBoardText(text, rules)
	if err != nil {
		t.Fatalf("ParseBoardText: %v", err)
	}
	return b
}

func TestNodeCacheSeekMissOnEmptyTable(t *testing.T) {
	cache := NewNodeCache(16)
	b := mustBoard(t, "_ _ _\n_ _ _\n_ _ _", board.Freestyle)
	if n := cache.Seek(b, board.Cross); n != nil {
		t.Fatalf("expected a miss on an empty cache, got %v", n)
	}
}

func TestNodeCacheInsertThenSeekRoundTrips(t *testing.T) {
	cache := NewNodeCache(16)
	b := mustBoard(t, "_ _ _\n_ X _\n_ _ _", board.Freestyle)

	inserted := cache.Insert(b, board.Circle, 4)
	found := cache.Seek(b, board.Circle)
	if found != inserted {
		t.Fatalf("Seek did not return the node Insert created")
	}

	if got := cache.Seek(b, board.Cross); got != nil {
		t.Fatalf("expected a miss for the other side to move, got %v", got)
	}
}

func TestNodeCacheRemoveThenSeekMisses(t *testing.T) {
	cache := NewNodeCache(16)
	b := mustBoard(t, "_ _ _\n_ X _\n_ _ _", board.Freestyle)
	cache.Insert(b, board.Circle, 1)
	cache.Remove(b, board.Circle)
	if got := cache.Seek(b, board.Circle); got != nil {
		t.Fatalf("expected a miss after Remove, got %v", got)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected Len() == 0 after removing the only entry, got %d", cache.Len())
	}
}

func TestNodeCacheCleanupEvictsBoardsThatCouldNotPrecedeCandidate(t *testing.T) {
	cache := NewNodeCache(16)
	stale := mustBoard(t, "X _ _\n_ _ _\n_ _ _", board.Freestyle)
	ancestor := mustBoard(t, "_ _ _\n_ _ _\n_ _ _", board.Freestyle)
	descendant := mustBoard(t, "_ _ _\n_ O _\n_ _ _", board.Freestyle)

	cache.Insert(stale, board.Circle, 1)
	cache.Insert(ancestor, board.Circle, 1)

	cache.Cleanup(descendant)

	if cache.Seek(stale, board.Circle) != nil {
		t.Fatalf("expected the stale entry (occupied where descendant is empty) to be evicted")
	}
	if cache.Seek(ancestor, board.Circle) == nil {
		t.Fatalf("expected the empty ancestor board to survive cleanup")
	}
}

func TestNodeCacheGrowsUnderLoad(t *testing.T) {
	cache := NewNodeCache(4)
	initialBuckets := len(cache.slots)
	for i := 0; i < 20; i++ {
		b := board.NewBoard(5, 5, board.Freestyle)
		b.Set(i/5, i%5, board.Cross)
		cache.Insert(b, board.Circle, 1)
	}
	if len(cache.slots) <= initialBuckets {
		t.Fatalf("expected the cache to have grown past its initial %d buckets, still at %d", initialBuckets, len(cache.slots))
	}
	if cache.Len() != 20 {
		t.Fatalf("expected 20 distinct entries after growth, got %d", cache.Len())
	}
}

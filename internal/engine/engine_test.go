package engine

import (
	"testing"
	"time"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/tss"
)

func TestSearchReturnsALegalMoveOnAnEmptyBoard(t *testing.T) {
	eng := NewEngine(Config{
		Rules:            board.Freestyle,
		NumWorkers:       2,
		NodeCacheEntries: 256,
		TTEntries:        256,
		TSSMode:          tss.Basic,
	})

	b := board.NewBoard(7, 7, board.Freestyle)
	move, info := eng.Search(b, board.Cross, SearchLimits{Nodes: 20})

	if move.IsNone() {
		t.Fatalf("expected a legal move on an empty board")
	}
	if !b.InBounds(int(move.Row), int(move.Col)) {
		t.Fatalf("move %v out of bounds", move)
	}
	if info.Nodes == 0 {
		t.Fatalf("expected at least one simulation to have run")
	}
}

func TestSearchFindsTheImmediateWinningMove(t *testing.T) {
	eng := NewEngine(Config{
		Rules:            board.Freestyle,
		NumWorkers:       2,
		NodeCacheEntries: 256,
		TTEntries:        256,
		TSSMode:          tss.Recursive,
	})

	b, err := board.ParseBoardText("X X X X _\n_ _ _ _ _\n_ _ _ _ _\n_ _ _ _ _\n_ _ _ _ _", board.Freestyle)
	if err != nil {
		t.Fatalf("ParseBoardText: %v", err)
	}

	move, _ := eng.Search(b, board.Cross, SearchLimits{Nodes: 200})
	if move.Row != 0 || move.Col != 4 {
		t.Fatalf("expected the completing move (0,4), got %v", move)
	}
}

func TestStopHaltsTheWorkerPoolPromptly(t *testing.T) {
	eng := NewEngine(Config{
		Rules:            board.Freestyle,
		NumWorkers:       2,
		NodeCacheEntries: 256,
		TTEntries:        256,
		TSSMode:          tss.Basic,
	})

	b := board.NewBoard(9, 9, board.Freestyle)

	go func() {
		time.Sleep(5 * time.Millisecond)
		eng.Stop()
	}()

	done := make(chan struct{})
	go func() {
		eng.Search(b, board.Cross, SearchLimits{Infinite: true})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Search did not return after Stop")
	}
}

func TestBudgetExceededRespectsNodeLimit(t *testing.T) {
	now := time.Now()
	budget := NewBudget(SearchLimits{Nodes: 10}, now)
	if budget.Exceeded(now, 5) {
		t.Fatalf("expected budget not yet exceeded at 5/10 nodes")
	}
	if !budget.Exceeded(now, 10) {
		t.Fatalf("expected budget exceeded at 10/10 nodes")
	}
}

func TestBudgetExceededRespectsMoveTime(t *testing.T) {
	now := time.Now()
	budget := NewBudget(SearchLimits{MoveTime: 10 * time.Millisecond}, now)
	if budget.Exceeded(now, 0) {
		t.Fatalf("expected budget not yet exceeded immediately")
	}
	if !budget.Exceeded(now.Add(20*time.Millisecond), 0) {
		t.Fatalf("expected budget exceeded after the deadline")
	}
}

func TestBudgetInfiniteIgnoresMoveTime(t *testing.T) {
	now := time.Now()
	budget := NewBudget(SearchLimits{MoveTime: time.Millisecond, Infinite: true}, now)
	if budget.Exceeded(now.Add(time.Hour), 0) {
		t.Fatalf("expected an infinite budget to never time out on its own")
	}
}

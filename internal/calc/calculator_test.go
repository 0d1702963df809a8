package calc

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/pattern"
)

func mustBoard(t *testing.T, text string, rules board.GameRules) *board.Board {
	t.Helper()
	b, err := board.ParseBoardText(text, rules)
	if err != nil {
		t.Fatalf("ParseBoardText: %v", err)
	}
	return b
}

func TestOpenThreeFlanksAreTrackedInHistogram(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _\n" +
		"_ _ X X _ _ _\n" +
		"_ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := New(board.Freestyle)
	c.SetBoard(b, board.Circle)

	if got := c.Threat(board.Cross, 3, 1); got != pattern.OpenThree {
		t.Fatalf("expected OPEN_3 at the flank, got %s", got)
	}
	squares := c.Histogram().Squares(false, pattern.OpenThree)
	if len(squares) == 0 {
		t.Fatalf("expected OPEN_3 squares in histogram")
	}
}

func TestAddMoveThenUndoRestoresState(t *testing.T) {
	text := "" +
		"_ _ _ _ _\n" +
		"_ _ _ _ _\n" +
		"_ _ X _ _\n" +
		"_ _ _ _ _\n" +
		"_ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := New(board.Freestyle)
	c.SetBoard(b, board.Circle)

	beforeHash := c.Hash()
	beforeThreat := c.Threat(board.Cross, 2, 3)

	m := board.Move{Row: 2, Col: 3, Sign: board.Circle}
	if err := c.AddMove(m); err != nil {
		t.Fatalf("AddMove: %v", err)
	}
	if c.Hash() == beforeHash {
		t.Fatalf("hash did not change after AddMove")
	}
	if err := c.UndoMove(m); err != nil {
		t.Fatalf("UndoMove: %v", err)
	}
	if c.Hash() != beforeHash {
		t.Fatalf("hash mismatch after undo: got %d want %d", c.Hash(), beforeHash)
	}
	if got := c.Threat(board.Cross, 2, 3); got != beforeThreat {
		t.Fatalf("threat mismatch after undo: got %s want %s", got, beforeThreat)
	}
}

func TestFiveInARowIsHighestThreat(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _\n" +
		"_ X X X X _ _\n" +
		"_ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := New(board.Freestyle)
	c.SetBoard(b, board.Circle)

	if got := c.Threat(board.Cross, 2, 5); got != pattern.FiveThreat {
		t.Fatalf("expected FIVE at completion square, got %s", got)
	}
}

func TestRenjuOverlineIsForbiddenForCrossOnly(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _ _\n" +
		"_ X X X X _ X _\n" +
		"_ _ _ _ _ _ _ _\n" +
		"_ _ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Renju)
	c := New(board.Renju)
	c.SetBoard(b, board.Cross)

	if !c.IsForbidden(board.Cross, 2, 5) {
		t.Fatalf("expected overline completion to be forbidden for Cross under Renju")
	}
	if c.IsForbidden(board.Circle, 2, 5) {
		t.Fatalf("Circle is never subject to Renju forbidden-move rules")
	}
}

func TestCaro6RequiresWinLengthSix(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _ _\n" +
		"_ X X X X X _ _\n" +
		"_ _ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Caro6)
	c := New(board.Caro6)
	c.SetBoard(b, board.Circle)

	if got := c.Threat(board.Cross, 1, 6); got != pattern.FiveThreat {
		t.Fatalf("expected completing square to reach Caro6's win length of 6, got %s", got)
	}
}

package movegen

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

func TestLegalModeListsEveryEmptySquare(t *testing.T) {
	text := "" +
		"_ X _\n" +
		"_ _ _\n" +
		"_ O _"
	b := mustBoard(t, text, board.Freestyle)
	c := calc.New(board.Freestyle)
	c.SetBoard(b, board.Cross)

	stack := NewActionStack(64)
	list := Generate(Legal, c, stack)
	if list.Len() != 7 {
		t.Fatalf("expected 7 empty squares, got %d", list.Len())
	}
	if !list.FullyExpanded {
		t.Fatalf("LEGAL mode should always be fully expanded")
	}
}

func TestThreatsModeReturnsOwnFiveFirst(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ X X X X _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := calc.New(board.Freestyle)
	c.SetBoard(b, board.Cross)

	stack := NewActionStack(64)
	list := Generate(Threats, c, stack)
	if list.Len() == 0 {
		t.Fatalf("expected a winning move to be generated")
	}
	for i := 0; i < list.Len(); i++ {
		m := list.At(i)
		if (m.Row != 1 || m.Col != 0) && (m.Row != 1 || m.Col != 5) {
			t.Fatalf("expected only the five-completing squares, got %s", m)
		}
	}
}

func TestThreatsModeMustDefendAgainstOpponentFive(t *testing.T) {
	text := "" +
		"_ _ _ _ _ _ _\n" +
		"_ O O O O _ _\n" +
		"_ _ _ _ _ _ _"
	b := mustBoard(t, text, board.Freestyle)
	c := calc.New(board.Freestyle)
	c.SetBoard(b, board.Cross)

	stack := NewActionStack(64)
	list := Generate(Threats, c, stack)
	if !list.MustDefend {
		t.Fatalf("expected must_defend against opponent's open four-in-five threat")
	}
	if list.Len() == 0 {
		t.Fatalf("expected at least one defensive move")
	}
}

func TestOrderPlacesHashMoveAndKillersFirst(t *testing.T) {
	stack := NewActionStack(16)
	list := stack.Snapshot()
	a := board.Move{Row: 0, Col: 0, Sign: board.Cross}
	b := board.Move{Row: 1, Col: 1, Sign: board.Cross}
	cc := board.Move{Row: 2, Col: 2, Sign: board.Cross}
	list.Push(a)
	list.Push(b)
	list.Push(cc)

	Order(list, cc, []board.Move{b})
	if !list.At(0).Equal(cc) {
		t.Fatalf("expected hash move first, got %s", list.At(0))
	}
	if !list.At(1).Equal(b) {
		t.Fatalf("expected killer move second, got %s", list.At(1))
	}
}

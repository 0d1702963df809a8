package nnue

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

func TestActiveFeaturesIncludesToMoveBias(t *testing.T) {
	b := mustBoard(t, "_ _ _\n_ X _\n_ _ _", board.Freestyle)
	c := calc.New(b.Rules)
	c.SetBoard(b, board.Circle)

	feats := ActiveFeatures(c, board.Circle, nil)
	found := false
	for _, f := range feats {
		if f == toMoveFeature {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the to-move bias feature for the side to move's own perspective")
	}

	featsOther := ActiveFeatures(c, board.Cross, nil)
	for _, f := range featsOther {
		if f == toMoveFeature {
			t.Fatalf("to-move bias feature must not appear from the non-moving side's perspective")
		}
	}
}

func TestRefreshThenUpdateMatchesFreshRefresh(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(7)

	b := mustBoard(t, "_ _ _ _ _\n_ _ _ _ _\n_ _ X _ _\n_ _ _ _ _\n_ _ _ _ _", board.Freestyle)
	c := calc.New(b.Rules)
	c.SetBoard(b, board.Circle)

	incremental := NewEvaluator(net)
	incremental.Refresh(c)

	m := board.Move{Row: 2, Col: 3, Sign: board.Circle}
	if err := c.AddMove(m); err != nil {
		t.Fatalf("AddMove: %v", err)
	}
	incremental.Update(c)

	fresh := NewEvaluator(net)
	fresh.Refresh(c)

	if incremental.acc != fresh.acc {
		t.Fatalf("incremental accumulator diverged from a fresh refresh after one move")
	}
	if incremental.Forward() != fresh.Forward() {
		t.Fatalf("incremental Forward() diverged from a fresh refresh after one move")
	}

	if err := c.UndoMove(m); err != nil {
		t.Fatalf("UndoMove: %v", err)
	}
	incremental.Update(c)

	backToFresh := NewEvaluator(net)
	backToFresh.Refresh(c)
	if incremental.acc != backToFresh.acc {
		t.Fatalf("incremental accumulator diverged from a fresh refresh after undo")
	}
}

func TestForwardIsBoundedUnitInterval(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(99)

	b := mustBoard(t, "_ _ _ _ _\n_ X O X _\n_ O X O _\n_ X O X _\n_ _ _ _ _", board.Freestyle)
	c := calc.New(b.Rules)
	c.SetBoard(b, board.Cross)

	e := NewEvaluator(net)
	e.Refresh(c)

	v := e.Forward()
	if v < -1 || v > 1 {
		t.Fatalf("Forward() = %v, want a value in [-1, 1]", v)
	}
}

func TestZeroWeightNetworkEvaluatesToZero(t *testing.T) {
	b := mustBoard(t, "_ _ _\n_ X _\n_ _ _", board.Freestyle)
	c := calc.New(b.Rules)
	c.SetBoard(b, board.Circle)

	e := NewEvaluator(nil)
	e.Refresh(c)
	if v := e.Forward(); v != 0 {
		t.Fatalf("expected a zero-weight network to evaluate to 0, got %v", v)
	}
}

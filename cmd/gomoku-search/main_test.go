package main

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
)

func TestParseRulesAcceptsEveryKnownName(t *testing.T) {
	cases := map[string]board.GameRules{
		"freestyle": board.Freestyle,
		"standard":  board.Standard,
		"renju":     board.Renju,
		"caro5":     board.Caro5,
		"caro6":     board.Caro6,
	}
	for name, want := range cases {
		got, err := parseRules(name)
		if err != nil {
			t.Fatalf("parseRules(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("parseRules(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseRulesRejectsUnknownName(t *testing.T) {
	if _, err := parseRules("chess"); err == nil {
		t.Fatalf("expected an error for an unknown ruleset")
	}
}

func TestParseSideAcceptsXAndO(t *testing.T) {
	got, err := parseSide("X")
	if err != nil || got != board.Cross {
		t.Fatalf("parseSide(X) = %v, %v, want Cross, nil", got, err)
	}
	got, err = parseSide("O")
	if err != nil || got != board.Circle {
		t.Fatalf("parseSide(O) = %v, %v, want Circle, nil", got, err)
	}
}

func TestParseSideRejectsGarbage(t *testing.T) {
	if _, err := parseSide("_"); err == nil {
		t.Fatalf("expected an error for an empty-cell side")
	}
	if _, err := parseSide("XX"); err == nil {
		t.Fatalf("expected an error for a multi-character side")
	}
}

func TestLoadBoardDefaultsToAnEmptyBoardWithoutAFile(t *testing.T) {
	b, err := loadBoard("", board.Freestyle, 9, 9)
	if err != nil {
		t.Fatalf("loadBoard: %v", err)
	}
	if b.Rows != 9 || b.Cols != 9 {
		t.Fatalf("expected a 9x9 board, got %dx%d", b.Rows, b.Cols)
	}
	if b.StoneCount() != 0 {
		t.Fatalf("expected an empty board, got %d stones", b.StoneCount())
	}
}

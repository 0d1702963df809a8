// Command gomoku-search is a manual smoke-test binary: it reads a board in
// the textual format of spec.md §6, runs the engine under the -nodes and
// -movetime limits (by default a 200000-node budget with no time limit),
// and prints the chosen move. It is explicitly not a Gomocup protocol
// server (that boundary is out of scope, matching spec.md §1's Non-goals).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/engine"
	"github.com/hailam/gomokusearch/internal/tss"
)

var (
	boardFile = flag.String("board", "", "path to a textual board file (default: empty 15x15 board)")
	rulesFlag = flag.String("rules", "freestyle", "freestyle|standard|renju|caro5|caro6")
	sideFlag  = flag.String("side", "X", "side to move: X or O")
	rows      = flag.Int("rows", 15, "board rows, used only without -board")
	cols      = flag.Int("cols", 15, "board cols, used only without -board")
	moveTime  = flag.Duration("movetime", 0, "search time budget (0 = unlimited, requires -nodes)")
	nodes     = flag.Uint64("nodes", 200_000, "node budget (0 = unlimited, requires -movetime)")
	workers   = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	weights   = flag.String("weights", "", "NNUE weights file (empty = random network)")
)

func main() {
	flag.Parse()

	rules, err := parseRules(*rulesFlag)
	if err != nil {
		log.Fatal(err)
	}
	side, err := parseSide(*sideFlag)
	if err != nil {
		log.Fatal(err)
	}

	b, err := loadBoard(*boardFile, rules, *rows, *cols)
	if err != nil {
		log.Fatal(err)
	}

	eng := engine.NewEngine(engine.Config{
		Rules:           rules,
		NumWorkers:      *workers,
		TSSMode:         tss.Recursive,
		NNUEWeightsPath: *weights,
		OnInfo: func(info engine.SearchInfo) {
			log.Printf("[Search] nodes=%d visits=%d value=%+v time=%s", info.Nodes, info.Visits, info.Value, info.Time)
		},
	})

	move, info := eng.Search(b, side, engine.SearchLimits{MoveTime: *moveTime, Nodes: *nodes})
	if move.IsNone() {
		fmt.Println("no legal move")
		os.Exit(1)
	}
	fmt.Printf("bestmove %s value=%+v nodes=%d time=%s\n", move, info.Value, info.Nodes, info.Time)
}

func parseRules(s string) (board.GameRules, error) {
	switch s {
	case "freestyle":
		return board.Freestyle, nil
	case "standard":
		return board.Standard, nil
	case "renju":
		return board.Renju, nil
	case "caro5":
		return board.Caro5, nil
	case "caro6":
		return board.Caro6, nil
	default:
		return 0, fmt.Errorf("unknown rules %q", s)
	}
}

func parseSide(s string) (board.Sign, error) {
	if len(s) != 1 {
		return board.None, fmt.Errorf("side must be a single character, got %q", s)
	}
	sign, ok := board.ParseSign(s[0])
	if !ok || sign == board.None || sign == board.Illegal {
		return board.None, fmt.Errorf("side must be X or O, got %q", s)
	}
	return sign, nil
}

func loadBoard(path string, rules board.GameRules, rows, cols int) (*board.Board, error) {
	if path == "" {
		return board.NewBoard(rows, cols, rules), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading board file: %w", err)
	}
	return board.ParseBoardText(string(data), rules)
}

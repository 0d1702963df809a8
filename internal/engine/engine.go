// Package engine wires package tss, package mcts and package nnue into the
// public search facade: a shared Tree/NodeCache/SharedHashTable searched by
// a pool of worker goroutines (spec.md §5's threading model), fronted by a
// Config/SearchLimits API in the teacher's style.
package engine

import (
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/gomokusearch/internal/board"
	"github.com/hailam/gomokusearch/internal/mcts"
	"github.com/hailam/gomokusearch/internal/nnue"
	"github.com/hailam/gomokusearch/internal/tss"
	"github.com/hailam/gomokusearch/internal/tt"
)

// NumWorkers is the default worker pool size (matches CPU cores).
var NumWorkers = runtime.GOMAXPROCS(0)

// Config configures a new Engine. Zero values are filled in by
// withDefaults, matching the teacher's difficulty-table approach of never
// requiring every field to be set.
type Config struct {
	Rules board.GameRules

	NumWorkers       int
	NodeCacheEntries int
	TTEntries        int

	TSSMode         tss.Mode
	TSSMaxPositions int

	// NNUEWeightsPath loads a trained network; if empty, a randomly
	// initialized network seeds the fallback evaluator (useful for tests
	// and for bootstrapping self-play before a network exists).
	NNUEWeightsPath string

	// OnInfo reports search progress (spec.md §7's "best move so far is
	// emitted" on timeout implies a caller wants incremental visibility).
	OnInfo func(SearchInfo)
}

func (c Config) withDefaults() Config {
	if c.NumWorkers <= 0 {
		c.NumWorkers = NumWorkers
	}
	if c.NodeCacheEntries <= 0 {
		c.NodeCacheEntries = 1 << 20
	}
	if c.TTEntries <= 0 {
		c.TTEntries = 1 << 20
	}
	if c.TSSMaxPositions <= 0 {
		c.TSSMaxPositions = 50_000
	}
	return c
}

// SearchInfo reports one search's outcome, the MCTS analogue of the
// teacher's iterative-deepening SearchInfo (depth/score/PV replaced by
// visits/value, since MCTS has no notion of a completed ply).
type SearchInfo struct {
	BestMove board.Move
	Value    board.Value
	Visits   int32
	Nodes    uint64
	Time     time.Duration
}

// Engine is the Gomoku search engine: one shared Tree/NodeCache/
// SharedHashTable and a pool of worker goroutines searching it.
type Engine struct {
	cfg     Config
	table   *tt.Table
	cache   *mcts.NodeCache
	tree    *mcts.Tree
	net     *nnue.Network
	workers []*worker

	stopFlag atomic.Bool
}

// NewEngine builds an Engine from cfg, creating one private worker per
// configured goroutine slot, each sharing the table and net but owning its
// own calculator and TSS instance (spec.md §5).
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()

	table := tt.New(cfg.TTEntries)
	cache := mcts.NewNodeCache(cfg.NodeCacheEntries)
	tree := mcts.NewTree(cache, mcts.Config{})

	net := nnue.NewNetwork()
	if cfg.NNUEWeightsPath != "" {
		if err := net.LoadWeights(cfg.NNUEWeightsPath); err != nil {
			log.Printf("[Engine] failed to load NNUE weights from %s: %v (falling back to random network)", cfg.NNUEWeightsPath, err)
			net.InitRandom(1)
		}
	} else {
		net.InitRandom(1)
	}

	e := &Engine{cfg: cfg, table: table, cache: cache, tree: tree, net: net}

	log.Printf("[Engine] creating %d workers (GOMAXPROCS=%d), node cache %s, hash table %s",
		cfg.NumWorkers, runtime.GOMAXPROCS(0), humanize.Comma(int64(cfg.NodeCacheEntries)), table.String())

	e.workers = make([]*worker, cfg.NumWorkers)
	for i := range e.workers {
		e.workers[i] = newWorker(i, cfg.Rules, table, net, cfg.TSSMode, cfg.TSSMaxPositions, int64(i)+1)
	}

	return e
}

// Stop signals every running worker to return after its current
// simulation, per spec.md §5's cooperative "is running" flag.
func (e *Engine) Stop() { e.stopFlag.Store(true) }

// Clear resets the shared hash table and bumps its generation, discarding
// history from prior searches.
func (e *Engine) Clear() {
	e.table.Clear()
	e.table.IncreaseGeneration()
}

// totalNodes sums every worker's simulation counter.
func (e *Engine) totalNodes() uint64 {
	var total uint64
	for _, w := range e.workers {
		total += w.nodes.Load()
	}
	return total
}

// Search finds the best move for (b, side) within limits, running the
// worker pool until the budget is exceeded or Stop is called. Each worker
// runs `select -> (solve + evaluate) -> expand -> backup` in a tight loop
// against the shared Tree (spec.md §5's worker loop).
func (e *Engine) Search(b *board.Board, side board.Sign, limits SearchLimits) (board.Move, SearchInfo) {
	e.stopFlag.Store(false)
	startTime := time.Now()

	// Bootstrap the root from the first worker's evaluator, matching the
	// usual AlphaZero-style "evaluate before simulating" root seeding.
	value, policy, _, movesLeft := e.workers[0].mcts.Eval.RequestEvaluation(b, side)
	root := e.tree.SetRoot(b, side, &tss.Task{}, policy)
	root.Value = value
	root.MovesLeft = movesLeft

	budget := NewBudget(limits, startTime)
	stop := func() bool {
		return e.stopFlag.Load() || budget.Exceeded(time.Now(), e.totalNodes())
	}

	g := new(errgroup.Group)
	for _, w := range e.workers {
		w := w
		g.Go(func() error {
			w.run(e.tree, b, side, stop)
			return nil
		})
	}
	_ = g.Wait()

	best := root.BestEdge()
	info := SearchInfo{
		Visits: root.Visits,
		Nodes:  e.totalNodes(),
		Time:   time.Since(startTime),
	}
	if best < 0 {
		return board.NoMove, info
	}
	edge := root.Edges[best]
	info.BestMove = edge.Move
	info.Value = edge.Value

	if e.cfg.OnInfo != nil {
		e.cfg.OnInfo(info)
	}

	return edge.Move, info
}

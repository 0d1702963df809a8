package mcts

import (
	"sync"

	"github.com/hailam/gomokusearch/internal/board"
)

type cacheSlot struct {
	used    bool
	key     uint64
	board   board.CompressedBoard
	side    board.Sign
	node    *Node
}

// NodeCache is the Tree's transposition table for MCTS nodes: an
// open-addressed hash table keyed by compressed board state plus
// side-to-move, shared by every worker and protected by a single mutex
// (spec's "NodeCache: single mutex; operations are brief"). Evicted nodes
// return their edge slices to pool rather than being left for the
// collector, the same freelist discipline package tt uses for its buckets.
type NodeCache struct {
	mu    sync.Mutex
	slots []cacheSlot
	mask  uint64
	count int
	pool  *edgePool
}

// NewNodeCache allocates a cache with at least capacity slots, rounded up
// to a power of two.
func NewNodeCache(capacity int) *NodeCache {
	n := nextPowerOfTwo(capacity)
	if n == 0 {
		n = 1
	}
	return &NodeCache{
		slots: make([]cacheSlot, n),
		mask:  n - 1,
		pool:  newEdgePool(),
	}
}

func nextPowerOfTwo(n int) uint64 {
	if n <= 0 {
		return 0
	}
	v := uint64(n - 1)
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}

func (c *NodeCache) probe(key uint64) int {
	i := key & c.mask
	for {
		s := &c.slots[i]
		if !s.used || s.key == key {
			return int(i)
		}
		i = (i + 1) & c.mask
	}
}

// Seek returns the cached node for (b, side), or nil if absent.
func (c *NodeCache) Seek(b *board.Board, side board.Sign) *Node {
	cb := board.Compress(b)
	key := cb.Hash64(side)

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.probe(key)
	s := &c.slots[i]
	if s.used && s.key == key && s.board.Equal(cb) && s.side == side {
		return s.node
	}
	return nil
}

// Insert creates and stores a newly cleared Node with numEdges edges for
// (b, side), doubling the table first if it would otherwise become more
// than half full. Open addressing degrades sharply as a table fills, so
// this resizes well before the nominal "load factor exceeds 1.0"
// threshold an external chained table could safely wait for.
func (c *NodeCache) Insert(b *board.Board, side board.Sign, numEdges int) *Node {
	cb := board.Compress(b)
	key := cb.Hash64(side)

	c.mu.Lock()
	if (c.count+1)*2 > len(c.slots) {
		c.resizeLocked(len(c.slots) * 2)
	}
	i := c.probe(key)
	s := &c.slots[i]
	node := newNode(c.pool, numEdges)
	if !s.used {
		c.count++
	} else {
		c.pool.put(s.node.Edges)
	}
	*s = cacheSlot{used: true, key: key, board: cb, side: side, node: node}
	c.mu.Unlock()
	return node
}

// Remove deletes the entry for (b, side), if present, returning its edges
// to pool and closing the open-addressing gap behind it.
func (c *NodeCache) Remove(b *board.Board, side board.Sign) {
	cb := board.Compress(b)
	key := cb.Hash64(side)

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.probe(key)
	s := &c.slots[i]
	if !s.used || s.key != key {
		return
	}
	c.pool.put(s.node.Edges)
	c.removeSlotLocked(uint64(i))
}

// removeSlotLocked clears slot i and re-inserts every entry in its probe
// run that follows, the standard open-addressing deletion shuffle.
func (c *NodeCache) removeSlotLocked(i uint64) {
	c.slots[i] = cacheSlot{}
	c.count--

	j := (i + 1) & c.mask
	for c.slots[j].used {
		s := c.slots[j]
		c.slots[j] = cacheSlot{}
		c.count--

		dest := c.probe(s.key)
		c.slots[dest] = s
		c.count++

		j = (j + 1) & c.mask
	}
}

// Cleanup retains only entries whose stored board could legally have
// preceded newBoard: for every cell, the stored Sign either matches or is
// None (spec's "compressed board transition test"). Everything else is
// evicted and its edges returned to pool — the standard move-forward
// pruning of stale transpositions from prior plies.
func (c *NodeCache) Cleanup(newBoard *board.Board) {
	candidate := board.Compress(newBoard)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < len(c.slots); i++ {
		s := &c.slots[i]
		if !s.used {
			continue
		}
		if !s.board.IsSubsetOf(candidate) {
			c.pool.put(s.node.Edges)
			c.removeSlotLocked(uint64(i))
			// removal may shift a later entry into slot i: check it again.
			i--
		}
	}
}

// Resize rehashes the cache into a table with at least newN slots
// (rounded up to a power of two).
func (c *NodeCache) Resize(newN int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resizeLocked(newN)
}

func (c *NodeCache) resizeLocked(newN int) {
	n := nextPowerOfTwo(newN)
	if n < nextPowerOfTwo(c.count+1) {
		n = nextPowerOfTwo(c.count + 1)
	}
	old := c.slots
	c.slots = make([]cacheSlot, n)
	c.mask = n - 1
	c.count = 0
	for _, s := range old {
		if !s.used {
			continue
		}
		i := c.probe(s.key)
		c.slots[i] = s
		c.count++
	}
}

// Len returns the number of entries currently stored.
func (c *NodeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

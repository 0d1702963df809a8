package tt

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
)

func TestInsertThenSeekRoundTrips(t *testing.T) {
	table := New(1024)
	key := board.HashKey64(0xDEADBEEFCAFEBABE)
	e := Entry{
		Move:       board.Move{Row: 3, Col: 4, Sign: board.Cross},
		Score:      board.WinIn(5),
		Bound:      BoundExact,
		Depth:      12,
		MustDefend: true,
		Generation: table.CurrentGeneration(),
	}
	table.Insert(key, e)

	got, ok := table.Seek(key)
	if !ok {
		t.Fatalf("expected Seek to find the inserted entry")
	}
	if !got.Move.Equal(e.Move) || got.Bound != e.Bound || got.Depth != e.Depth || !got.MustDefend {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, e)
	}
	if got.Score != e.Score {
		t.Fatalf("score mismatch: got %d want %d", got.Score, e.Score)
	}
}

func TestSeekMissOnDifferentKey(t *testing.T) {
	table := New(1024)
	table.Insert(board.HashKey64(1), Entry{Bound: BoundExact, Depth: 4})
	if _, ok := table.Seek(board.HashKey64(2)); ok {
		t.Fatalf("expected a miss for an unrelated key")
	}
}

func TestClearRemovesAllEntries(t *testing.T) {
	table := New(1024)
	key := board.HashKey64(42)
	table.Insert(key, Entry{Bound: BoundExact, Depth: 1})
	table.Clear()
	if _, ok := table.Seek(key); ok {
		t.Fatalf("expected Clear to remove all entries")
	}
}

func TestReplacementPrefersShallowerDepthWhenBucketFull(t *testing.T) {
	table := New(bucketSize) // exactly one bucket
	if table.NumBuckets() != 1 {
		t.Fatalf("expected exactly one bucket, got %d", table.NumBuckets())
	}
	// Every key below maps to bucket 0 (mask is 0), and distinct top
	// bytes give each a distinct keyHigh so they don't collide.
	keyAt := func(i int) board.HashKey64 { return board.HashKey64(i+1) << 56 }

	for i := 0; i < bucketSize; i++ {
		table.Insert(keyAt(i), Entry{Bound: BoundExact, Depth: uint8(i + 1)})
	}
	// Insert a 5th, distinct key: should evict the shallowest (depth 1).
	table.Insert(keyAt(99), Entry{Bound: BoundExact, Depth: 20})
	if _, ok := table.Seek(keyAt(0)); ok {
		t.Fatalf("expected the shallowest entry to have been evicted")
	}
	if _, ok := table.Seek(keyAt(99)); !ok {
		t.Fatalf("expected the newly inserted entry to be present")
	}
}

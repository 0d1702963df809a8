package tt

import (
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/hailam/gomokusearch/internal/board"
)

// bucketSize is the number of entries per hash bucket (spec.md §4.7: "a
// small array (e.g. 4) of entries").
const bucketSize = 4

type bucket struct {
	mu      sync.Mutex
	entries [bucketSize]uint64
}

// Table is the SharedHashTable: fixed capacity, power-of-two bucket
// count, safe for concurrent probes/inserts from every search worker.
type Table struct {
	buckets    []bucket
	mask       uint64
	generation uint32 // atomic
}

// New allocates a table with at least capacity entries (rounded up to
// the next power of two bucket count).
func New(capacity int) *Table {
	if capacity < bucketSize {
		capacity = bucketSize
	}
	numBuckets := nextPowerOfTwo(uint64(capacity) / bucketSize)
	if numBuckets == 0 {
		numBuckets = 1
	}
	return &Table{
		buckets: make([]bucket, numBuckets),
		mask:    numBuckets - 1,
	}
}

func nextPowerOfTwo(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

func (t *Table) bucketIndex(key board.HashKey64) uint64 {
	return uint64(key) & t.mask
}

// CurrentGeneration returns the generation new inserts should stamp
// themselves with.
func (t *Table) CurrentGeneration() uint16 {
	return uint16(atomic.LoadUint32(&t.generation) & genMask)
}

// IncreaseGeneration advances the replacement-policy generation counter,
// called once per new search (spec.md §4.7).
func (t *Table) IncreaseGeneration() {
	atomic.AddUint32(&t.generation, 1)
}

// Seek looks up key, returning the stored entry if present and not a
// collision (spec.md §4.7's seek). Correctness contract: a caller must
// still validate that Entry.Move is legal in the current position before
// trusting it — the table never validates (spec.md §4.7).
func (t *Table) Seek(key board.HashKey64) (Entry, bool) {
	b := &t.buckets[t.bucketIndex(key)]
	want := keyHighByte(key)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, packed := range b.entries {
		e, kh := unpackEntry(packed)
		if e.Bound != BoundNone && kh == want {
			return e, true
		}
	}
	return Entry{}, false
}

// Insert stores e under key, using the replacement policy of spec.md
// §4.7: prefer (a) a slot already matching key, then (b) an empty slot,
// then (c) the shallowest depth, then (d) the oldest generation.
func (t *Table) Insert(key board.HashKey64, e Entry) {
	b := &t.buckets[t.bucketIndex(key)]
	want := keyHighByte(key)
	packed := packEntry(e, key)

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.entries {
		ex, kh := unpackEntry(existing)
		if ex.Bound != BoundNone && kh == want {
			b.entries[i] = packed
			return
		}
	}
	for i, existing := range b.entries {
		ex, _ := unpackEntry(existing)
		if ex.Bound == BoundNone {
			b.entries[i] = packed
			return
		}
	}

	worst := 0
	worstEntry, _ := unpackEntry(b.entries[0])
	for i := 1; i < bucketSize; i++ {
		ex, _ := unpackEntry(b.entries[i])
		if ex.Depth < worstEntry.Depth ||
			(ex.Depth == worstEntry.Depth && ex.Generation < worstEntry.Generation) {
			worst = i
			worstEntry = ex
		}
	}
	b.entries[worst] = packed
}

// Prefetch is a memory-subsystem hint (spec.md §4.7). Go has no portable
// prefetch intrinsic in the standard library, so this reads the target
// bucket's header to pull its cache line in, which is the closest
// stdlib-only approximation of the contract; it never blocks or takes
// the bucket lock.
func (t *Table) Prefetch(key board.HashKey64) {
	_ = t.buckets[t.bucketIndex(key)].entries[0]
}

// Clear empties every entry and resets the generation counter.
func (t *Table) Clear() {
	for i := range t.buckets {
		b := &t.buckets[i]
		b.mu.Lock()
		b.entries = [bucketSize]uint64{}
		b.mu.Unlock()
	}
	atomic.StoreUint32(&t.generation, 0)
}

// NumBuckets returns the number of allocated buckets.
func (t *Table) NumBuckets() int { return len(t.buckets) }

// SizeBytes estimates the table's resident memory footprint.
func (t *Table) SizeBytes() uint64 {
	return uint64(len(t.buckets)) * bucketSize * 8
}

// String renders a human-readable size summary for logging, matching the
// teacher's size-in-MB reporting style.
func (t *Table) String() string {
	return humanize.Bytes(t.SizeBytes())
}

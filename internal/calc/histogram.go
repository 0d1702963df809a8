// Package calc implements the incremental PatternCalculator of spec.md
// §4.4: per-square pattern/threat state kept synchronized with board
// edits, backed by the precomputed tables in package pattern.
package calc

import (
	"sort"

	"github.com/hailam/gomokusearch/internal/pattern"
)

// Histogram is spec.md §3's ThreatHistogram: for each side, a mapping from
// ThreatType to the set of empty squares currently carrying that threat.
// Squares are encoded as row*cols+col by the caller (Calculator).
type Histogram struct {
	buckets [2]map[pattern.Threat]map[int]struct{} // [sideIndex][threat] -> square set
	current [2]map[int]pattern.Threat              // [sideIndex][square] -> current threat
}

func sideIndex(isCircle bool) int {
	if isCircle {
		return 1
	}
	return 0
}

// NewHistogram returns an empty histogram.
func NewHistogram() *Histogram {
	h := &Histogram{}
	for s := 0; s < 2; s++ {
		h.buckets[s] = make(map[pattern.Threat]map[int]struct{})
		h.current[s] = make(map[int]pattern.Threat)
	}
	return h
}

// Reset clears all entries.
func (h *Histogram) Reset() {
	for s := 0; s < 2; s++ {
		for k := range h.buckets[s] {
			delete(h.buckets[s], k)
		}
		for k := range h.current[s] {
			delete(h.current[s], k)
		}
	}
}

// Set records that square now carries threat for the given side (NoThreat
// removes the square from the histogram entirely).
func (h *Histogram) Set(isCircle bool, square int, threat pattern.Threat) {
	s := sideIndex(isCircle)
	if old, ok := h.current[s][square]; ok {
		if old == threat {
			return
		}
		if bucket := h.buckets[s][old]; bucket != nil {
			delete(bucket, square)
		}
		delete(h.current[s], square)
	}
	if threat == pattern.NoThreat {
		return
	}
	bucket, ok := h.buckets[s][threat]
	if !ok {
		bucket = make(map[int]struct{})
		h.buckets[s][threat] = bucket
	}
	bucket[square] = struct{}{}
	h.current[s][square] = threat
}

// Get returns the current threat recorded for square, or NoThreat.
func (h *Histogram) Get(isCircle bool, square int) pattern.Threat {
	return h.current[sideIndex(isCircle)][square]
}

// Squares returns the (ascending, deterministic) set of squares carrying
// threat for the given side.
func (h *Histogram) Squares(isCircle bool, threat pattern.Threat) []int {
	bucket := h.buckets[sideIndex(isCircle)][threat]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]int, 0, len(bucket))
	for sq := range bucket {
		out = append(out, sq)
	}
	sort.Ints(out)
	return out
}

// Count returns the number of squares carrying threat for the given side.
func (h *Histogram) Count(isCircle bool, threat pattern.Threat) int {
	return len(h.buckets[sideIndex(isCircle)][threat])
}

// Any reports whether at least one square carries threat for the side.
func (h *Histogram) Any(isCircle bool, threat pattern.Threat) bool {
	return h.Count(isCircle, threat) > 0
}

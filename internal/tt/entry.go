// Package tt implements the SharedHashTable of spec.md §4.7: an
// open-addressed, fixed-capacity, power-of-two, 4-way bucketed
// transposition table safe for concurrent use by every search worker
// (spec.md §5's "thread-safe via per-bucket lock" shared-resource
// policy).
package tt

import "github.com/hailam/gomokusearch/internal/board"

// Bound is the kind of score bound an Entry stores.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower
	BoundUpper
)

func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "EXACT"
	case BoundLower:
		return "LOWER"
	case BoundUpper:
		return "UPPER"
	default:
		return "NONE"
	}
}

// Entry is the unpacked SharedHashTable payload of spec.md §6: move,
// score, bound, depth, must-defend, has-initiative, and generation.
// BoundNone marks a slot as empty — a genuine stored entry always carries
// a resolved bound.
type Entry struct {
	Move          board.Move
	Score         board.Score
	Bound         Bound
	Depth         uint8
	MustDefend    bool
	HasInitiative bool
	Generation    uint16
}

// Packed bit layout (spec.md §6), all within one uint64:
//
//	[0..15]   16-bit move (row:6 | col:6 | sign:2 | reserved:2)
//	[16..31]  16-bit score, saturated to int16
//	[32..35]  bound
//	[36..43]  depth
//	[44]      must-defend flag
//	[45]      has-initiative flag
//	[46..55]  generation counter (10 bits)
//	[56..63]  hash key high bits for collision check (top byte of the key)
const (
	moveShift  = 0
	scoreShift = 16
	boundShift = 32
	depthShift = 36
	mustDefBit = 44
	initBit    = 45
	genShift   = 46
	keyShift   = 56

	boundMask = 0xF
	depthMask = 0xFF
	genMask   = 0x3FF
	keyMask   = 0xFF
)

func keyHighByte(key board.HashKey64) uint64 {
	return uint64(key>>56) & keyMask
}

func saturateInt16(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

func packEntry(e Entry, key board.HashKey64) uint64 {
	var packed uint64
	packed |= uint64(e.Move.Packed()) << moveShift
	packed |= uint64(uint16(saturateInt16(int32(e.Score)))) << scoreShift
	packed |= (uint64(e.Bound) & boundMask) << boundShift
	packed |= (uint64(e.Depth) & depthMask) << depthShift
	if e.MustDefend {
		packed |= 1 << mustDefBit
	}
	if e.HasInitiative {
		packed |= 1 << initBit
	}
	packed |= (uint64(e.Generation) & genMask) << genShift
	packed |= keyHighByte(key) << keyShift
	return packed
}

func unpackEntry(packed uint64) (Entry, uint64) {
	e := Entry{
		Move:          board.UnpackMove(uint16(packed >> moveShift)),
		Score:         board.Score(int16(uint16(packed >> scoreShift))),
		Bound:         Bound((packed >> boundShift) & boundMask),
		Depth:         uint8((packed >> depthShift) & depthMask),
		MustDefend:    (packed>>mustDefBit)&1 != 0,
		HasInitiative: (packed>>initBit)&1 != 0,
		Generation:    uint16((packed >> genShift) & genMask),
	}
	keyHigh := (packed >> keyShift) & keyMask
	return e, keyHigh
}

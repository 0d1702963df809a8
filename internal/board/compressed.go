package board

import "github.com/cespare/xxhash/v2"

// CompressedBoard packs a board's cells at 2 bits each (the Sign encoding)
// into 64-bit words, row-major, matching the NodeCache key layout of
// spec.md §6. It is the value NodeCache actually stores and compares.
type CompressedBoard struct {
	Rows, Cols int
	Words      []uint64
}

// Compress packs b into a CompressedBoard.
func Compress(b *Board) CompressedBoard {
	n := b.Rows * b.Cols
	words := make([]uint64, (n+31)/32)
	i := 0
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			s := b.At(r, c)
			if s == Illegal {
				s = None
			}
			words[i/32] |= uint64(s) << uint((i%32)*2)
			i++
		}
	}
	return CompressedBoard{Rows: b.Rows, Cols: b.Cols, Words: words}
}

// Equal reports whether two compressed boards hold identical cells.
func (cb CompressedBoard) Equal(other CompressedBoard) bool {
	if cb.Rows != other.Rows || cb.Cols != other.Cols {
		return false
	}
	for i := range cb.Words {
		if cb.Words[i] != other.Words[i] {
			return false
		}
	}
	return true
}

// IsSubsetOf reports whether every occupied cell of cb has the same sign in
// candidate (cb's empties may be occupied in candidate). This is the
// NodeCache.cleanup predicate of spec.md §4.10: "the stored Sign either
// matches or is NONE". For each word the condition
// (stored XOR candidate) AND stored == 0 holds iff stored is a subset of
// candidate, an efficient OR-reduction across words (spec.md §4.10).
//
// Because a 2-bit lane can encode up to 3 distinct non-None values, a plain
// per-word XOR/AND test only works when every lane's "occupied" bit pattern
// is monotonic with respect to None=0; Sign satisfies that (None is the
// all-zero encoding), so the bitwise trick is exact.
func (cb CompressedBoard) IsSubsetOf(candidate CompressedBoard) bool {
	if cb.Rows != candidate.Rows || cb.Cols != candidate.Cols {
		return false
	}
	for i := range cb.Words {
		stored := cb.Words[i]
		if (stored^candidate.Words[i])&stored != 0 {
			return false
		}
	}
	return true
}

// Hash64 hashes the packed words with xxhash, mixed with the side to move.
// Used as the NodeCache bucket key (spec.md §4.10/§6: "compressed board ...
// plus side-to-move mixed into the Zobrist key").
func (cb CompressedBoard) Hash64(sideToMove Sign) uint64 {
	var buf [8]byte
	d := xxhash.New()
	for _, w := range cb.Words {
		putUint64(buf[:], w)
		d.Write(buf[:])
	}
	h := d.Sum64()
	return h ^ ZobristSide(sideToMove)
}

func putUint64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

package board

// HashKey64 is a 64-bit Zobrist key, XOR-accumulated per (cell, sign) plus
// a side-to-move term (spec.md §3, §GLOSSARY).
type HashKey64 = uint64

// MaxCells bounds the per-(row,col,sign) constant table. 32x32 covers every
// board size this engine supports; a 15x15 board uses a small corner of it.
const MaxCells = 32 * 32

// zobristPRNG is the teacher's xorshift64* generator
// (internal/board/zobrist.go's initZobrist), reused verbatim for
// reproducible table construction.
type zobristPRNG struct{ state uint64 }

func newZobristPRNG(seed uint64) *zobristPRNG { return &zobristPRNG{state: seed} }

func (p *zobristPRNG) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

var (
	zobristCell [MaxCells][3]uint64 // [cell][Cross-1, Circle-1] unused index 2 kept for symmetry
	zobristSide [2]uint64
)

func init() {
	rng := newZobristPRNG(0x9E3779B97F4A7C15)
	for cell := 0; cell < MaxCells; cell++ {
		zobristCell[cell][0] = rng.next() // Cross
		zobristCell[cell][1] = rng.next() // Circle
	}
	zobristSide[0] = rng.next()
	zobristSide[1] = rng.next()
}

func cellIndex(r, c, cols int) int {
	return r*cols + c
}

// ZobristCell returns the per-(cell, sign) Zobrist constant. sign must be
// Cross or Circle.
func ZobristCell(r, c, cols int, sign Sign) uint64 {
	idx := cellIndex(r, c, cols)
	switch sign {
	case Cross:
		return zobristCell[idx][0]
	case Circle:
		return zobristCell[idx][1]
	default:
		return 0
	}
}

// ZobristSide returns the side-to-move Zobrist term.
func ZobristSide(sign Sign) uint64 {
	if sign == Circle {
		return zobristSide[1]
	}
	return zobristSide[0]
}

// Hash computes the Zobrist key for the board from scratch: XOR of every
// occupied cell's constant, plus the side-to-move term (spec.md §8's
// "Zobrist(B, s) = XOR of per-(cell, sign) constants ... side_constant(s)").
func Hash(b *Board, sideToMove Sign) HashKey64 {
	var h uint64
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if s := b.At(r, c); s == Cross || s == Circle {
				h ^= ZobristCell(r, c, b.Cols, s)
			}
		}
	}
	h ^= ZobristSide(sideToMove)
	return h
}

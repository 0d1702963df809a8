package board

import (
	"fmt"
	"strings"
)

// HalfLen is half the length of the longest line pattern the engine
// reasons about (an 11-cell line is centered on a square with 5 neighbors
// either side). Board is padded with a ring of Illegal cells of this width
// so neighborhood reads never have to branch on bounds.
const HalfLen = 5

// Board is a rectangular Gomoku/Renju playing surface. Internally it is
// stored padded with a HalfLen-wide ring of Illegal cells, matching
// spec.md §3's "Board" data model.
type Board struct {
	Rows, Cols int
	Rules      GameRules

	stride int // padded row stride
	cells  []Sign
}

// NewBoard creates an empty board of the given size.
func NewBoard(rows, cols int, rules GameRules) *Board {
	stride := cols + 2*HalfLen
	cells := make([]Sign, stride*(rows+2*HalfLen))
	for i := range cells {
		cells[i] = Illegal
	}
	b := &Board{Rows: rows, Cols: cols, Rules: rules, stride: stride, cells: cells}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.cells[b.index(r, c)] = None
		}
	}
	return b
}

func (b *Board) index(r, c int) int {
	return (r+HalfLen)*b.stride + (c + HalfLen)
}

// InBounds reports whether (r, c) is a playable square (possibly out of
// the logical board, in which case it reads as Illegal from the padding).
func (b *Board) InBounds(r, c int) bool {
	return r >= 0 && r < b.Rows && c >= 0 && c < b.Cols
}

// At returns the sign at (r, c); out-of-range reads return Illegal from the
// padding ring without a bounds branch.
func (b *Board) At(r, c int) Sign {
	return b.cells[b.index(r, c)]
}

// Set writes sign at (r, c). Caller is responsible for legality; Board
// itself never rejects a write (PatternCalculator and MoveGenerator own
// legality checks).
func (b *Board) Set(r, c int, sign Sign) {
	b.cells[b.index(r, c)] = sign
}

// IsEmpty reports whether (r, c) is in bounds and unoccupied.
func (b *Board) IsEmpty(r, c int) bool {
	return b.InBounds(r, c) && b.At(r, c) == None
}

// Clone returns a deep, independent copy.
func (b *Board) Clone() *Board {
	cp := *b
	cp.cells = append([]Sign(nil), b.cells...)
	return &cp
}

// StoneCount returns the number of non-None cells on the board.
func (b *Board) StoneCount() int {
	n := 0
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if b.At(r, c) != None {
				n++
			}
		}
	}
	return n
}

// IsFull reports whether every square is occupied.
func (b *Board) IsFull() bool {
	return b.StoneCount() == b.Rows*b.Cols
}

// String renders the board in the textual format of spec.md §6: one row
// per line, cells separated by spaces, origin top-left.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.Rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < b.Cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.At(r, c).String())
		}
	}
	return sb.String()
}

// ParseBoardText parses the textual board format of spec.md §6 into a new
// Board. Round-trips with String (spec.md §8's "Board → string → Board is
// identity" law).
func ParseBoardText(text string, rules GameRules) (*Board, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	rows := len(lines)
	if rows == 0 {
		return nil, fmt.Errorf("board: empty text")
	}
	cols := 0
	rowCells := make([][]Sign, rows)
	for i, line := range lines {
		fields := strings.Fields(line)
		if cols == 0 {
			cols = len(fields)
		}
		if len(fields) != cols {
			return nil, fmt.Errorf("board: row %d has %d cells, want %d", i, len(fields), cols)
		}
		row := make([]Sign, cols)
		for j, f := range fields {
			if len(f) != 1 {
				return nil, fmt.Errorf("board: row %d cell %d: invalid token %q", i, j, f)
			}
			sign, ok := ParseSign(f[0])
			if !ok {
				return nil, fmt.Errorf("board: row %d cell %d: unknown cell %q", i, j, f)
			}
			row[j] = sign
		}
		rowCells[i] = row
	}
	b := NewBoard(rows, cols, rules)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.Set(r, c, rowCells[r][c])
		}
	}
	return b, nil
}

// Center returns the board's center square, the canonical first move on an
// empty board (spec.md §8 boundary behavior).
func (b *Board) Center() (int, int) {
	return b.Rows / 2, b.Cols / 2
}

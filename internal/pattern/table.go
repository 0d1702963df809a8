package pattern

import (
	"sync"

	"github.com/hailam/gomokusearch/internal/board"
)

// LineLen is the length of a pattern line: 5 cells either side of the
// (empty) center square (spec.md §4.1).
const LineLen = 2*board.HalfLen + 1 // 11
const center = board.HalfLen        // index 5

// Encoding is what PatternTable.Lookup returns for a single line: the
// pattern each side would create by playing the center square, an
// auxiliary "closed three" signal (a run of exactly three open on only one
// end) consumed only by ThreatTable to derive HALF_OPEN_3, and the 10-bit neighbor update mask of spec.md §4.1.
type Encoding struct {
	Cross, Circle             Type
	CrossClosed, CircleClosed bool
	UpdateMask                uint16
}

// Table is the precomputed classification of every length-11 line under
// one GameRules. It is built once (lazily) and is safe for concurrent
// read-only use by every search worker (spec.md §9).
type Table struct {
	rules   board.GameRules
	entries []Encoding // indexed by encodeLine(line); len == 4^LineLen
}

var (
	tableCache   [5]*Table
	tableOnce    [5]sync.Once
	tableBuildMu sync.Mutex
)

// ForRules returns the shared, read-only PatternTable for rules, building
// it on first use.
func ForRules(rules board.GameRules) *Table {
	idx := int(rules)
	tableOnce[idx].Do(func() {
		tableBuildMu.Lock()
		defer tableBuildMu.Unlock()
		tableCache[idx] = build(rules)
	})
	return tableCache[idx]
}

// encodeLine packs an 11-cell line into a lookup key, 2 bits per cell.
func encodeLine(line [LineLen]board.Sign) uint32 {
	var key uint32
	for i, s := range line {
		key |= uint32(s) << uint(2*i)
	}
	return key
}

func decodeLine(key uint32) [LineLen]board.Sign {
	var line [LineLen]board.Sign
	for i := range line {
		line[i] = board.Sign((key >> uint(2*i)) & 0x3)
	}
	return line
}

// build enumerates every line with an empty center (4^(LineLen-1)
// combinations of the 10 neighbor cells) and classifies it for both sides,
// then derives each entry's update mask. Matches spec.md §4.1's
// construction recipe; cost is amortized at process start (spec.md §9).
func build(rules board.GameRules) *Table {
	t := &Table{rules: rules, entries: make([]Encoding, 1<<(2*LineLen))}

	var line [LineLen]board.Sign
	line[center] = board.None

	var generate func(pos int)
	generate = func(pos int) {
		if pos == LineLen {
			key := encodeLine(line)
			t.entries[key] = classifyLine(line, rules)
			return
		}
		if pos == center {
			generate(pos + 1)
			return
		}
		for _, s := range [4]board.Sign{board.None, board.Cross, board.Circle, board.Illegal} {
			line[pos] = s
			generate(pos + 1)
		}
		line[pos] = board.None
	}
	generate(0)
	return t
}

// Lookup returns the precomputed classification for line (center must be
// board.None).
func (t *Table) Lookup(line [LineLen]board.Sign) Encoding {
	return t.entries[encodeLine(line)]
}

// classifyLine computes Encoding for one line, including the update mask.
func classifyLine(line [LineLen]board.Sign, rules board.GameRules) Encoding {
	base := classifyBoth(line, rules)
	enc := Encoding{
		Cross:       base.cross,
		Circle:      base.circle,
		CrossClosed: base.crossClosed,
		CircleClosed: base.circleClosed,
	}
	for i := 0; i < LineLen; i++ {
		if i == center {
			continue
		}
		orig := line[i]
		differs := false
		for _, s := range [4]board.Sign{board.None, board.Cross, board.Circle, board.Illegal} {
			if s == orig {
				continue
			}
			variant := line
			variant[i] = s
			v := classifyBoth(variant, rules)
			if v.cross != base.cross || v.circle != base.circle ||
				v.crossClosed != base.crossClosed || v.circleClosed != base.circleClosed {
				differs = true
				break
			}
		}
		if differs {
			enc.UpdateMask |= 1 << uint(i)
		}
	}
	return enc
}

type bothClassification struct {
	cross, circle             Type
	crossClosed, circleClosed bool
}

func classifyBoth(line [LineLen]board.Sign, rules board.GameRules) bothClassification {
	return bothClassification{
		cross:        classifyForSelf(line, board.Cross, rules).typ,
		crossClosed:  classifyForSelf(line, board.Cross, rules).closedThree,
		circle:       classifyForSelf(line, board.Circle, rules).typ,
		circleClosed: classifyForSelf(line, board.Circle, rules).closedThree,
	}
}

type selfClassification struct {
	typ         Type
	closedThree bool
}

// classifyForSelf determines what pattern `self` creates by playing the
// (currently empty) center square of line, per the hierarchy of spec.md
// §4.1: FIVE, OVERLINE, OPEN_4, DOUBLE_4, HALF_OPEN_4, OPEN_3, first match
// wins. Broken fours and double fours are detected uniformly by scanning
// every win-length window through the center for a single empty gap.
func classifyForSelf(line [LineLen]board.Sign, self board.Sign, rules board.GameRules) selfClassification {
	temp := line
	temp[center] = self
	winLen := rules.WinLength()

	left, right := center, center
	for left > 0 && temp[left-1] == self {
		left--
	}
	for right < LineLen-1 && temp[right+1] == self {
		right++
	}
	runLen := right - left + 1
	leftOpen := left-1 >= 0 && temp[left-1] == board.None
	rightOpen := right+1 <= LineLen-1 && temp[right+1] == board.None

	if runLen >= winLen {
		blockedBothEnds := !leftOpen && !rightOpen
		if rules.RequiresUnblockedEnds() && blockedBothEnds {
			return selfClassification{typ: NoPattern}
		}
		if runLen == winLen {
			return selfClassification{typ: Five}
		}
		return selfClassification{typ: Overline}
	}

	// Gap-window scan: every window of length winLen containing the
	// center with no blocking stone and exactly one empty cell is a
	// distinct "one move completes a five" threat. Two or more distinct
	// gap positions from a single contiguous run (the two flanks of an
	// open four) collapse to OPEN_4; otherwise two-or-more distinct gaps
	// is DOUBLE_4 (spec.md §4.1/GLOSSARY).
	gaps := map[int]bool{}
	loOff := center - (winLen - 1)
	if loOff < 0 {
		loOff = 0
	}
	hiOff := center
	if hiOff > LineLen-winLen {
		hiOff = LineLen - winLen
	}
	for off := loOff; off <= hiOff; off++ {
		if off+winLen-1 > LineLen-1 {
			continue
		}
		selfCount, noneCount, blockers, gapPos := 0, 0, 0, -1
		for k := off; k < off+winLen; k++ {
			switch temp[k] {
			case self:
				selfCount++
			case board.None:
				noneCount++
				gapPos = k
			default:
				blockers++
			}
		}
		if blockers == 0 && selfCount == winLen-1 && noneCount == 1 {
			gaps[gapPos] = true
		}
	}

	if len(gaps) >= 2 {
		if runLen == winLen-1 && leftOpen && rightOpen && len(gaps) == 2 && gaps[left-1] && gaps[right+1] {
			return selfClassification{typ: OpenFour}
		}
		return selfClassification{typ: DoubleFour}
	}
	if len(gaps) == 1 {
		return selfClassification{typ: HalfOpenFour}
	}

	if runLen == 3 {
		if leftOpen && rightOpen {
			return selfClassification{typ: Open3}
		}
		if leftOpen || rightOpen {
			return selfClassification{typ: NoPattern, closedThree: true}
		}
	}
	return selfClassification{typ: NoPattern}
}

package pattern

import (
	"testing"

	"github.com/hailam/gomokusearch/internal/board"
)

func TestDefensesFindsTheSingleGapInAHalfOpenFour(t *testing.T) {
	dt := NewDefensiveTable(board.Freestyle)

	var line [ExtendedLineLen]board.Sign
	line[0] = board.Circle // blocks the left end
	line[1] = board.Cross
	line[2] = board.Cross
	line[3] = board.Cross
	line[4] = board.Cross
	line[5] = board.None // the only completing square

	mask := dt.Defenses(line, board.Cross, HalfOpenFourThreat)
	if mask != 1<<5 {
		t.Fatalf("Defenses() = %012b, want a single bit set at position 5", mask)
	}
}

func TestDefensesFindsBothGapsInAnOpenFour(t *testing.T) {
	dt := NewDefensiveTable(board.Freestyle)

	var line [ExtendedLineLen]board.Sign
	line[3] = board.None
	line[4] = board.Cross
	line[5] = board.Cross
	line[6] = board.Cross
	line[7] = board.Cross
	line[8] = board.None

	mask := dt.Defenses(line, board.Cross, OpenFourThreat)
	want := uint16(1<<3 | 1<<8)
	if mask != want {
		t.Fatalf("Defenses() = %012b, want %012b (both open ends)", mask, want)
	}
}

func TestDefensesReturnsEmptyMaskForThreeClassThreats(t *testing.T) {
	dt := NewDefensiveTable(board.Freestyle)

	var line [ExtendedLineLen]board.Sign
	line[0] = board.Circle
	line[1] = board.Cross
	line[2] = board.Cross
	line[3] = board.Cross
	line[4] = board.Cross
	line[5] = board.None

	for _, threat := range []Threat{HalfOpen3, OpenThree, Fork3x3} {
		if mask := dt.Defenses(line, board.Cross, threat); mask != 0 {
			t.Fatalf("Defenses(%v) = %012b, want an empty mask for a three-class threat", threat, mask)
		}
	}
}

// Package pattern implements the precomputed, read-only classification
// tables of spec.md §4.1–§4.3: PatternTable, ThreatTable and
// DefensiveMoveTable. All three are built once per GameRules (lazily, on
// first use) and shared read-only across every worker thread, matching
// spec.md §9's "process-wide read-only state" design note.
package pattern

// Type is a per-direction, per-side pattern classification (spec.md §3
// "PatternType"). The numeric order is not the classification
// precedence: classifyForSelf ranks OPEN_4 above DOUBLE_4 and FIVE above
// OVERLINE, and Classify applies its precedence explicitly.
type Type uint8

const (
	NoPattern Type = iota
	Open3
	HalfOpenFour
	OpenFour
	DoubleFour
	Five
	Overline
)

func (t Type) String() string {
	switch t {
	case NoPattern:
		return "NONE"
	case Open3:
		return "OPEN_3"
	case HalfOpenFour:
		return "HALF_OPEN_4"
	case OpenFour:
		return "OPEN_4"
	case DoubleFour:
		return "DOUBLE_4"
	case Five:
		return "FIVE"
	case Overline:
		return "OVERLINE"
	default:
		return "?"
	}
}

// Threat is a per-square, per-side threat classification derived
// deterministically from the four per-direction Types (spec.md §3
// "ThreatType", §4.2).
type Threat uint8

const (
	NoThreat Threat = iota
	HalfOpen3
	OpenThree
	Fork3x3
	HalfOpenFourThreat
	Fork4x3
	Fork4x4
	OpenFourThreat
	FiveThreat
	OverlineThreat
)

func (t Threat) String() string {
	switch t {
	case NoThreat:
		return "NONE"
	case HalfOpen3:
		return "HALF_OPEN_3"
	case OpenThree:
		return "OPEN_3"
	case Fork3x3:
		return "FORK_3x3"
	case HalfOpenFourThreat:
		return "HALF_OPEN_4"
	case Fork4x3:
		return "FORK_4x3"
	case Fork4x4:
		return "FORK_4x4"
	case OpenFourThreat:
		return "OPEN_4"
	case FiveThreat:
		return "FIVE"
	case OverlineThreat:
		return "OVERLINE"
	default:
		return "?"
	}
}

// IsFour reports whether t is any threat built from a four
// (half-open, open, or a fork involving one).
func (t Threat) IsFour() bool {
	switch t {
	case HalfOpenFourThreat, Fork4x3, Fork4x4, OpenFourThreat:
		return true
	default:
		return false
	}
}

// Direction indexes the 4 line directions a square participates in.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
	DiagDown // top-left to bottom-right
	DiagUp   // bottom-left to top-right
	NumDirections
)

var DirectionDeltas = [NumDirections][2]int{
	Horizontal: {0, 1},
	Vertical:   {1, 0},
	DiagDown:   {1, 1},
	DiagUp:     {1, -1},
}

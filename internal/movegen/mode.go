package movegen

// Mode selects a generation strategy (spec.md §4.5).
type Mode int

const (
	// Legal lists every empty square.
	Legal Mode = iota
	// Threats follows the cascading own-five / defend-five / own-four /
	// defend-four / own-three priority order, stopping at the first
	// non-empty tier.
	Threats
	// Reduced returns the Threats list when it is non-empty, and
	// otherwise every empty square in the 7x7 "crown" around a stone;
	// crown squares are not added to a non-empty Threats list.
	Reduced
	// Normal is Reduced's synonym for non-root search nodes.
	Normal
	// VCF restricts candidates to four-making moves and forced replies.
	VCF
	// Static delegates entirely to the StaticSolver; Generate returns an
	// empty list for this mode (see package solver).
	Static
	// Basic also delegates to the StaticSolver.
	Basic
)

func (m Mode) String() string {
	switch m {
	case Legal:
		return "LEGAL"
	case Threats:
		return "THREATS"
	case Reduced:
		return "REDUCED"
	case Normal:
		return "NORMAL"
	case VCF:
		return "VCF"
	case Static:
		return "STATIC"
	case Basic:
		return "BASIC"
	default:
		return "?"
	}
}

package pattern

// Group is the 4-direction pattern result for one square and one side,
// the input to ThreatTable (spec.md §4.2).
type Group struct {
	Types  [4]Type
	Closed [4]bool // auxiliary "half-open three" signal: a three open on exactly one end
}

// Classify derives the single ThreatType for a Group, following the
// ordered rules of spec.md §4.2 exactly (strongest to weakest, first
// match wins):
//
//	any FIVE                        -> FIVE
//	any OVERLINE                    -> OVERLINE
//	any OPEN_4                      -> OPEN_4
//	>=2 HALF_OPEN_4 or any DOUBLE_4  -> FORK_4x4
//	1 HALF_OPEN_4 + >=1 OPEN_3      -> FORK_4x3
//	1 HALF_OPEN_4                   -> HALF_OPEN_4
//	>=2 OPEN_3                      -> FORK_3x3
//	1 OPEN_3                        -> OPEN_3
//	1 HALF_OPEN_3 (closed three)    -> HALF_OPEN_3
//	else                             -> NONE
func Classify(g Group) Threat {
	var fives, overlines, openFours, halfOpenFours, doubleFours, openThrees, closedThrees int
	for i, t := range g.Types {
		switch t {
		case Five:
			fives++
		case Overline:
			overlines++
		case OpenFour:
			openFours++
		case DoubleFour:
			doubleFours++
		case HalfOpenFour:
			halfOpenFours++
		case Open3:
			openThrees++
		}
		if g.Closed[i] {
			closedThrees++
		}
	}

	switch {
	case fives > 0:
		return FiveThreat
	case overlines > 0:
		return OverlineThreat
	case openFours > 0:
		return OpenFourThreat
	case doubleFours > 0 || halfOpenFours >= 2:
		return Fork4x4
	case halfOpenFours == 1 && openThrees >= 1:
		return Fork4x3
	case halfOpenFours == 1:
		return HalfOpenFourThreat
	case openThrees >= 2:
		return Fork3x3
	case openThrees == 1:
		return OpenThree
	case closedThrees >= 1:
		return HalfOpen3
	default:
		return NoThreat
	}
}

// Lookup is the spec-literal surface (spec.md §4.2: "Maps a 4-tuple of
// PatternType ... to a single ThreatType"), ignoring the HALF_OPEN_3
// auxiliary signal. Callers that track it (PatternCalculator) should use
// Classify with a populated Group instead.
func Lookup(types [4]Type) Threat {
	return Classify(Group{Types: types})
}

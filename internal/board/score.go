package board

// Score is a bounded, saturating integer with three "proven" bands layered
// on top of the plain evaluation range, matching spec.md §3's Score model.
// The encoding mirrors the teacher's mate-score idiom
// (engine.MateScore/engine.Infinity, engine.AdjustScoreFromTT): a proven
// win is a large constant minus a plies-to-outcome distance, so nearer
// wins sort above farther ones and a simple integer comparison gives the
// ordering LOSS < every eval < DRAW < WIN: Draw sits above the whole
// non-proven evaluation range, not between negative and positive evals.
type Score int32

const (
	// EvalBound is the saturating bound for a non-proven evaluation.
	EvalBound Score = 1000

	winBase  Score = 1_000_000
	drawFlat Score = 500_000
	// MaxProvenDistance bounds how many plies a proven score can be from
	// its outcome before it saturates against winBase/-winBase.
	MaxProvenDistance Score = 1000

	// ScoreInfinity is used as the initial alpha/beta window bound.
	ScoreInfinity Score = 2_000_000
)

// WinIn returns the proven score for a win n plies from now.
func WinIn(n int) Score {
	d := Score(n)
	if d > MaxProvenDistance {
		d = MaxProvenDistance
	}
	if d < 0 {
		d = 0
	}
	return winBase - d
}

// LossIn returns the proven score for a loss n plies from now.
func LossIn(n int) Score {
	return -WinIn(n)
}

// Draw is the proven-draw score.
const Draw Score = drawFlat

// Eval builds a saturating, non-proven evaluation score.
func Eval(v int) Score {
	s := Score(v)
	if s > EvalBound {
		return EvalBound
	}
	if s < -EvalBound {
		return -EvalBound
	}
	return s
}

func (s Score) IsWin() bool  { return s >= winBase-MaxProvenDistance }
func (s Score) IsLoss() bool { return s <= -(winBase - MaxProvenDistance) }
func (s Score) IsDraw() bool { return s == drawFlat }
func (s Score) IsProven() bool {
	return s.IsWin() || s.IsLoss() || s.IsDraw()
}

// Distance returns the plies-to-outcome for a proven score, or 0 for a
// non-proven or draw score.
func (s Score) Distance() int {
	switch {
	case s.IsWin():
		return int(winBase - s)
	case s.IsLoss():
		return int(s + winBase)
	default:
		return 0
	}
}

// IncreaseDistance moves a proven score one ply farther from the outcome;
// non-proven and draw scores are unaffected. Applied once per move boundary
// while a proven score propagates up the search (spec.md §3, §4.8).
func (s Score) IncreaseDistance() Score {
	switch {
	case s.IsWin():
		if s <= winBase-MaxProvenDistance {
			return s
		}
		return s - 1
	case s.IsLoss():
		if s >= -(winBase - MaxProvenDistance) {
			return s
		}
		return s + 1
	default:
		return s
	}
}

// Negate flips the score to the opponent's perspective. Draw is a fixed
// point; Win/Loss invert into each other because LossIn(n) == -WinIn(n) by
// construction; a non-proven eval simply negates.
func (s Score) Negate() Score {
	if s.IsDraw() {
		return s
	}
	return -s
}

// ProvenValue reduces Score to the coarser ProvenValue view used at the
// MCTS layer (spec.md §3).
func (s Score) ProvenValue() ProvenValue {
	switch {
	case s.IsWin():
		return Win
	case s.IsLoss():
		return Loss
	case s.IsDraw():
		return DrawValue
	default:
		return Unknown
	}
}

// ProvenValue is a coarser view of Score: proven outcome without a
// plies-to-go distance (spec.md §3).
type ProvenValue uint8

const (
	Unknown ProvenValue = iota
	Loss
	DrawValue
	Win
)

func (p ProvenValue) String() string {
	switch p {
	case Loss:
		return "LOSS"
	case DrawValue:
		return "DRAW"
	case Win:
		return "WIN"
	default:
		return "UNKNOWN"
	}
}

// Invert swaps Win/Loss; Draw and Unknown are fixed points.
func (p ProvenValue) Invert() ProvenValue {
	switch p {
	case Win:
		return Loss
	case Loss:
		return Win
	default:
		return p
	}
}

package tss

import "time"

// positionBudget enforces spec.md §4.8's max_positions hard counter: once
// exceeded, the current node is forced to behave as a leaf regardless of
// remaining depth.
type positionBudget struct {
	max   int
	spent int
}

func (b *positionBudget) Reset(max int) {
	b.max = max
	b.spent = 0
}

func (b *positionBudget) Consume() { b.spent++ }

func (b *positionBudget) Exhausted() bool {
	return b.max > 0 && b.spent >= b.max
}

func (b *positionBudget) Spent() int { return b.spent }

// minPositionBudget is a floor below which the tuner refuses to shrink
// max_positions further: a budget that small can't complete even one
// depthStep iteration usefully.
const minPositionBudget = 256

// tunerWindow bounds how many recent (step, speed) samples the regression
// considers; older samples age out so the tuner tracks recent conditions.
const tunerWindow = 8

type tunerSample struct {
	step  float64
	speed float64 // positions searched per second
}

// positionBudgetTuner is spec.md §4.8's auto-tuner: it slowly adjusts
// max_positions using linear regression over (step, speed) samples to
// balance search depth against throughput. Grounded on the teacher's
// timeman.go adaptive time allocation (AdjustForStability/
// AdjustForInstability): both accept a "good enough, keep nudging" fixed
// point rather than solving for an exact one (see DESIGN.md's Open
// Question resolution).
type positionBudgetTuner struct {
	target  float64 // desired positions/sec
	current int
	step    int
	samples []tunerSample
}

func newPositionBudgetTuner(initial int, targetSpeed float64) *positionBudgetTuner {
	if initial < minPositionBudget {
		initial = minPositionBudget
	}
	return &positionBudgetTuner{target: targetSpeed, current: initial}
}

// Record logs one completed iteration's throughput and returns the
// (possibly adjusted) budget to use next.
func (t *positionBudgetTuner) Record(positionsSearched int, elapsed time.Duration) int {
	if elapsed <= 0 || positionsSearched <= 0 {
		return t.current
	}
	speed := float64(positionsSearched) / elapsed.Seconds()
	t.samples = append(t.samples, tunerSample{step: float64(t.step), speed: speed})
	if len(t.samples) > tunerWindow {
		t.samples = t.samples[len(t.samples)-tunerWindow:]
	}
	t.step++

	slope := t.trendSlope()
	switch {
	case speed < t.target:
		// behind target throughput: rein in the budget so iterative
		// deepening has a chance to finish a step.
		t.current -= t.current / 10
	case slope >= 0:
		// at or above target and not regressing: afford more depth.
		t.current += t.current / 10
	}
	if t.current < minPositionBudget {
		t.current = minPositionBudget
	}
	return t.current
}

// trendSlope fits a least-squares line through the recorded samples and
// returns its slope; a non-negative slope means throughput is flat or
// improving.
func (t *positionBudgetTuner) trendSlope() float64 {
	n := len(t.samples)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range t.samples {
		sumX += s.step
		sumY += s.speed
		sumXY += s.step * s.speed
		sumXX += s.step * s.step
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (nf*sumXY - sumX*sumY) / denom
}

// Current returns the tuner's present budget recommendation.
func (t *positionBudgetTuner) Current() int { return t.current }

package nnue

// Accumulator holds the accumulated L1 hidden layer values, one per
// perspective (Cross-to-move-relative and Circle-to-move-relative), so
// Forward can pick side-to-move-first ordering without recomputation.
// Unlike the teacher's AccumulatorStack (needed there so concurrent
// search plies could roll back cheaply), package tss's Evaluator.Update
// always resynchronizes this single accumulator to the calculator's
// live state by diffing each perspective's feature set, so no push/pop
// history is kept (see DESIGN.md).
type Accumulator struct {
	Cross    [L1Size]int16
	Circle   [L1Size]int16
	Computed bool
}

// ComputeFull rebuilds both perspectives from scratch given their
// respective currently active feature sets.
func (acc *Accumulator) ComputeFull(net *Network, crossActive, circleActive []int) {
	copy(acc.Cross[:], net.L1Bias[:])
	copy(acc.Circle[:], net.L1Bias[:])
	for _, f := range crossActive {
		addRow(&acc.Cross, net, f)
	}
	for _, f := range circleActive {
		addRow(&acc.Circle, net, f)
	}
	acc.Computed = true
}

// AddCross / RemoveCross / AddCircle / RemoveCircle apply or retract a
// single feature's weight row for one perspective's accumulator.
func (acc *Accumulator) AddCross(net *Network, f int)    { addRow(&acc.Cross, net, f) }
func (acc *Accumulator) RemoveCross(net *Network, f int) { subRow(&acc.Cross, net, f) }
func (acc *Accumulator) AddCircle(net *Network, f int)   { addRow(&acc.Circle, net, f) }
func (acc *Accumulator) RemoveCircle(net *Network, f int) {
	subRow(&acc.Circle, net, f)
}

func addRow(dst *[L1Size]int16, net *Network, f int) {
	simdAddRow(dst, &net.L1Weights[f])
}

func subRow(dst *[L1Size]int16, net *Network, f int) {
	simdSubRow(dst, &net.L1Weights[f])
}

package nnue

// Network holds the NNUE weights: one shared feature-to-L1 weight
// table (both perspectives index into it identically, since
// ActiveFeatures already encodes self/opponent relative to whichever
// perspective is being computed), a perspective-concatenated L2 layer,
// and a scalar output layer.
type Network struct {
	L1Weights [FeatureCount][L1Size]int16
	L1Bias    [L1Size]int16

	L2Weights [L1Size * 2][L2Size]int8
	L2Bias    [L2Size]int32

	OutputWeights [L2Size]int8
	OutputBias    int32
}

// NewNetwork creates a network with zero weights (must load weights or
// init random before use).
func NewNetwork() *Network {
	return &Network{}
}

// Forward computes the network's scalar output given an accumulator,
// ordering the side-to-move's perspective first as SIMD-friendly NNUE
// designs do (so a single set of L2 weights always sees "us" then
// "them").
func (n *Network) Forward(acc *Accumulator, sideIsCircle bool) int32 {
	var stm, nstm *[L1Size]int16
	if sideIsCircle {
		stm, nstm = &acc.Circle, &acc.Cross
	} else {
		stm, nstm = &acc.Cross, &acc.Circle
	}

	var l1Out [L1Size * 2]int8
	for i := 0; i < L1Size; i++ {
		l1Out[i] = ClampedReLU(stm[i])
		l1Out[L1Size+i] = ClampedReLU(nstm[i])
	}

	var l2Out [L2Size]int8
	for i := 0; i < L2Size; i++ {
		sum := n.L2Bias[i]
		for j := 0; j < L1Size*2; j++ {
			sum += int32(l1Out[j]) * int32(n.L2Weights[j][i])
		}
		l2Out[i] = ClampedReLU(int16(sum >> L1QuantShift))
	}

	output := n.OutputBias
	for i := 0; i < L2Size; i++ {
		output += int32(l2Out[i]) * int32(n.OutputWeights[i])
	}
	return output >> L2QuantShift
}

// InitRandom fills the network with small pseudo-random weights, for
// tests and smoke runs that have no trained weight file.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}

	for i := range n.L1Weights {
		for j := 0; j < L1Size; j++ {
			n.L1Weights[i][j] = next() >> 5
		}
	}
	for i := 0; i < L1Size; i++ {
		n.L1Bias[i] = next() >> 3
	}
	for i := 0; i < L1Size*2; i++ {
		for j := 0; j < L2Size; j++ {
			n.L2Weights[i][j] = clampInt8(next() >> 6)
		}
	}
	for i := 0; i < L2Size; i++ {
		n.L2Bias[i] = int32(next())
	}
	for i := 0; i < L2Size; i++ {
		n.OutputWeights[i] = clampInt8(next() >> 6)
	}
	n.OutputBias = int32(next())
}

func clampInt8(v int16) int8 {
	if v > 127 {
		v = 127
	} else if v < -128 {
		v = -128
	}
	return int8(v)
}

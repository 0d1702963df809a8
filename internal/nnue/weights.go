package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Weight file format constants.
const (
	magicNumber = 0x474d4b55 // "GMKU"
	formatVersion = 1
)

// fileHeader is the header of the weight file.
type fileHeader struct {
	Magic   uint32
	Version uint32
	L1Size  uint32
	L2Size  uint32
}

// LoadWeights loads network weights from a binary file.
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("nnue: open weights: %w", err)
	}
	defer f.Close()
	return n.LoadWeightsFromReader(f)
}

// SaveWeights saves network weights to a binary file.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("nnue: create weights file: %w", err)
	}
	defer f.Close()

	header := fileHeader{Magic: magicNumber, Version: formatVersion, L1Size: L1Size, L2Size: L2Size}
	if err := binary.Write(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("nnue: write header: %w", err)
	}
	for i := range n.L1Weights {
		if err := binary.Write(f, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("nnue: write L1 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("nnue: write L1 bias: %w", err)
	}
	for i := range n.L2Weights {
		if err := binary.Write(f, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("nnue: write L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("nnue: write L2 bias: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("nnue: write output weights: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: write output bias: %w", err)
	}
	return nil
}

// LoadWeightsFromReader loads network weights from an io.Reader,
// matching the format SaveWeights writes.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("nnue: read header: %w", err)
	}
	if header.Magic != magicNumber {
		return fmt.Errorf("nnue: bad magic number: got %x", header.Magic)
	}
	if header.Version != formatVersion {
		return fmt.Errorf("nnue: unsupported version %d", header.Version)
	}
	if header.L1Size != L1Size || header.L2Size != L2Size {
		return fmt.Errorf("nnue: layer size mismatch: file has L1=%d L2=%d, want L1=%d L2=%d",
			header.L1Size, header.L2Size, L1Size, L2Size)
	}

	for i := range n.L1Weights {
		if err := binary.Read(r, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("nnue: read L1 weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("nnue: read L1 bias: %w", err)
	}
	for i := range n.L2Weights {
		if err := binary.Read(r, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("nnue: read L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("nnue: read L2 bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("nnue: read output weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: read output bias: %w", err)
	}
	return nil
}

package kernel

import (
	"fmt"
	"strconv"
	"strings"
)

// Kernel is an immutable square matrix of convolution weights.
// A nil *Kernel is never valid; use Load, Parse or New to obtain one.
type Kernel struct {
	size    int
	weights []float64 // row-major, size*size
}

// New builds a kernel from rows, which must form a non-empty square matrix.
// The rows are copied.
func New(rows [][]float64) (*Kernel, error) {
	size := len(rows)
	if size == 0 {
		return nil, fmt.Errorf("%w: kernel must have at least one row", ErrSize)
	}
	if size > MaxCells/size {
		return nil, fmt.Errorf("%w: %dx%d kernel exceeds %d cells", ErrAllocation, size, size, MaxCells)
	}

	weights := make([]float64, 0, size*size)
	for r, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d entries, expected %d", ErrSize, r+1, len(row), size)
		}
		weights = append(weights, row...)
	}
	return &Kernel{size: size, weights: weights}, nil
}

// Size returns N for an N×N kernel.
func (k *Kernel) Size() int {
	if k == nil {
		return 0
	}
	return k.size
}

// At returns the weight in the given row and column, or 0 for a nil kernel.
// Coordinates outside the kernel panic like a slice index.
func (k *Kernel) At(row, col int) float64 {
	if k == nil {
		return 0
	}
	return k.weights[row*k.size+col]
}

// Row returns a copy of row r.
func (k *Kernel) Row(r int) []float64 {
	if k == nil {
		return nil
	}
	row := make([]float64, k.size)
	copy(row, k.weights[r*k.size:(r+1)*k.size])
	return row
}

// Weights returns a copy of the kernel as a slice of rows.
func (k *Kernel) Weights() [][]float64 {
	if k == nil {
		return nil
	}
	rows := make([][]float64, k.size)
	for r := range rows {
		rows[r] = k.Row(r)
	}
	return rows
}

// Sum returns the sum of all weights.
func (k *Kernel) Sum() float64 {
	if k == nil {
		return 0
	}
	var sum float64
	for _, w := range k.weights {
		sum += w
	}
	return sum
}

// String renders the kernel in the description format accepted by Parse.
func (k *Kernel) String() string {
	if k == nil {
		return "<invalid>"
	}
	var sb strings.Builder
	for r := 0; r < k.size; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < k.size; c++ {
			if c > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatFloat(k.At(r, c), 'f', -1, 64))
		}
	}
	return sb.String()
}

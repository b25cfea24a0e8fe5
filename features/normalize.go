package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// minStdDev is the spread below which a matrix is treated as constant.
const minStdDev = 1e-10

// Normalize returns (m - mean) / std using one population mean and standard deviation over
// every cell of m.
func Normalize(m *mat.Dense) (*mat.Dense, error) {
	r, c := m.Dims()
	values := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		values = append(values, m.RawRowView(i)...)
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	if math.IsNaN(std) || math.IsInf(std, 0) || math.IsInf(mean, 0) || std < minStdDev {
		return nil, fmt.Errorf("%w: standard deviation %g", ErrDegenerateSignal, std)
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		return (v - mean) / std
	}, m)
	return out, nil
}

// Canonicalize keeps the first frameLength columns of m, appending zero columns when m is
// shorter. frameLength must be positive.
func Canonicalize(m *mat.Dense, frameLength int) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, frameLength, nil)
	if n := min(c, frameLength); n > 0 {
		out.Slice(0, r, 0, n).(*mat.Dense).Copy(m.Slice(0, r, 0, n))
	}
	return out
}

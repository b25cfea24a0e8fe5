package features

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const powerFloor = 1e-10

// powerToDB converts m to decibels in place and clips everything more than topDB below
// the maximum.
func powerToDB(m *mat.Dense, topDB float64) {
	peak := math.Inf(-1)
	m.Apply(func(_, _ int, v float64) float64 {
		db := 10 * math.Log10(math.Max(powerFloor, v))
		if db > peak {
			peak = db
		}
		return db
	}, m)

	floor := peak - topDB
	m.Apply(func(_, _ int, v float64) float64 {
		return math.Max(v, floor)
	}, m)
}

// dctBasis returns the first rows of the orthonormal DCT-II matrix of size n.
func dctBasis(rows, n int) *mat.Dense {
	basis := mat.NewDense(rows, n, nil)
	first := math.Sqrt(1 / float64(n))
	rest := math.Sqrt(2 / float64(n))
	for k := 0; k < rows; k++ {
		scale := rest
		if k == 0 {
			scale = first
		}
		for i := 0; i < n; i++ {
			basis.Set(k, i, scale*math.Cos(math.Pi*float64(k)*float64(2*i+1)/float64(2*n)))
		}
	}
	return basis
}

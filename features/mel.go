package features

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melLinearStep = 200.0 / 3
	melLogMinHz   = 1000.0
	melLogMin     = melLogMinHz / melLinearStep
)

var melLogStep = math.Log(6.4) / 27.0

func hzToMel(hz float64) float64 {
	if hz >= melLogMinHz {
		return melLogMin + math.Log(hz/melLogMinHz)/melLogStep
	}
	return hz / melLinearStep
}

func melToHz(mel float64) float64 {
	if mel >= melLogMin {
		return melLogMinHz * math.Exp(melLogStep*(mel-melLogMin))
	}
	return mel * melLinearStep
}

// melFilterbank returns a (bands x fftSize/2+1) matrix of triangular filters whose
// weights are scaled so every filter has unit area in Hz.
func melFilterbank(sampleRate, fftSize, bands int, fmin, fmax float64) *mat.Dense {
	bins := fftSize/2 + 1
	freqs := make([]float64, bins)
	for i := range freqs {
		freqs[i] = float64(i) * float64(sampleRate) / float64(fftSize)
	}

	lo, hi := hzToMel(fmin), hzToMel(fmax)
	edges := make([]float64, bands+2)
	for i := range edges {
		edges[i] = melToHz(lo + (hi-lo)*float64(i)/float64(bands+1))
	}

	weights := mat.NewDense(bands, bins, nil)
	for m := 0; m < bands; m++ {
		left, centre, right := edges[m], edges[m+1], edges[m+2]
		enorm := 2.0 / (right - left)
		for b, f := range freqs {
			lower := (f - left) / (centre - left)
			upper := (right - f) / (right - centre)
			w := math.Max(0, math.Min(lower, upper))
			if w > 0 {
				weights.Set(m, b, w*enorm)
			}
		}
	}

	return weights
}

package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// frameCount is the number of centered frames produced for n samples, each side padded by fftSize/2.
func frameCount(n, fftSize, hop int) int {
	return 1 + (n+2*(fftSize/2)-fftSize)/hop
}

// powerSpectrogram returns |STFT|^2 as a (fftSize/2+1 x frames) matrix.
func powerSpectrogram(samples []float64, fftSize, hop int) *mat.Dense {
	pad := fftSize / 2
	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	frames := frameCount(len(samples), fftSize, hop)
	bins := fftSize/2 + 1

	window := hannWindow(fftSize)
	fft := fourier.NewFFT(fftSize)
	buffer := make([]float64, fftSize)
	coeffs := make([]complex128, bins)

	power := mat.NewDense(bins, frames, nil)
	for t := 0; t < frames; t++ {
		start := t * hop
		for k := range buffer {
			buffer[k] = padded[start+k] * window[k]
		}
		coeffs = fft.Coefficients(coeffs, buffer)
		for b, c := range coeffs {
			re, im := real(c), imag(c)
			power.Set(b, t, re*re+im*im)
		}
	}

	return power
}

// hannWindow returns a periodic Hann window, the variant used for spectral analysis.
func hannWindow(length int) []float64 {
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos((2*math.Pi*float64(i))/float64(length)))
	}
	return window
}

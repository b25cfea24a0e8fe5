package features

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const testSampleRate = 16000

// syntheticSpeech mixes a few partials with low-level noise so every frame has energy.
func syntheticSpeech(n int) []float64 {
	rng := rand.New(rand.NewPCG(7, 11))
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / testSampleRate
		samples[i] = 0.4*math.Sin(2*math.Pi*220*t) +
			0.2*math.Sin(2*math.Pi*660*t+0.3) +
			0.1*math.Sin(2*math.Pi*1800*t*(1+0.1*t)) +
			0.02*(rng.Float64()*2-1)
	}
	return samples
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	ex, err := NewExtractor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}
	return ex
}

func columnIsZero(m *mat.Dense, col int) bool {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		if m.At(i, col) != 0 {
			return false
		}
	}
	return true
}

func TestExtractShapeIsFixed(t *testing.T) {
	t.Parallel()

	ex := newTestExtractor(t)
	for _, n := range []int{300, 512 * 10, 79 * 512, 99 * 512, 100 * 512, 250 * 512} {
		f, err := ex.Extract(syntheticSpeech(n), testSampleRate)
		if err != nil {
			t.Fatalf("n=%d: Extract returned error: %v", n, err)
		}
		r, c := f.Matrix.Dims()
		if r != 13 || c != 100 {
			t.Fatalf("n=%d: expected 13x100, got %dx%d", n, r, c)
		}
		if f.RawFrames != frameCount(n, 2048, 512) {
			t.Fatalf("n=%d: expected %d raw frames, got %d", n, frameCount(n, 2048, 512), f.RawFrames)
		}
	}
}

func TestExtractPadsEightyFrameRecording(t *testing.T) {
	t.Parallel()

	ex := newTestExtractor(t)
	f, err := ex.Extract(syntheticSpeech(79*512), testSampleRate)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if f.RawFrames != 80 {
		t.Fatalf("expected 80 raw frames, got %d", f.RawFrames)
	}
	for col := 80; col < 100; col++ {
		if !columnIsZero(f.Matrix, col) {
			t.Fatalf("expected padding column %d to be zero", col)
		}
	}
	for col := 0; col < 80; col++ {
		if columnIsZero(f.Matrix, col) {
			t.Fatalf("real frame %d is unexpectedly all zero", col)
		}
	}
}

func TestExtractTruncationKeepsLeadingFrames(t *testing.T) {
	t.Parallel()

	ex := newTestExtractor(t)
	samples := syntheticSpeech(180 * 512)

	raw, err := ex.MFCC(samples, testSampleRate)
	if err != nil {
		t.Fatalf("MFCC returned error: %v", err)
	}
	normalised, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	f, err := ex.Extract(samples, testSampleRate)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := normalised.Slice(0, 13, 0, 100)
	if !mat.Equal(f.Matrix, want) {
		t.Fatalf("truncated matrix does not match the first 100 frames")
	}
}

func TestNormalizeGlobalStatistics(t *testing.T) {
	t.Parallel()

	ex := newTestExtractor(t)
	raw, err := ex.MFCC(syntheticSpeech(60*512), testSampleRate)
	if err != nil {
		t.Fatalf("MFCC returned error: %v", err)
	}
	normalised, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	r, c := normalised.Dims()
	values := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		values = append(values, normalised.RawRowView(i)...)
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if math.Abs(mean) > 1e-9 {
		t.Fatalf("expected mean 0, got %g", mean)
	}
	if math.Abs(std-1) > 1e-9 {
		t.Fatalf("expected std 1, got %g", std)
	}
}

func TestNormalizeRejectsConstantMatrix(t *testing.T) {
	t.Parallel()

	m := mat.NewDense(2, 3, []float64{4, 4, 4, 4, 4, 4})
	if _, err := Normalize(m); !errors.Is(err, ErrDegenerateSignal) {
		t.Fatalf("expected ErrDegenerateSignal, got %v", err)
	}
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	padded := Canonicalize(m, 5)
	wantPadded := mat.NewDense(2, 5, []float64{
		1, 2, 3, 0, 0,
		4, 5, 6, 0, 0,
	})
	if !mat.Equal(padded, wantPadded) {
		t.Fatalf("unexpected padding result %v", mat.Formatted(padded))
	}

	truncated := Canonicalize(m, 2)
	wantTruncated := mat.NewDense(2, 2, []float64{
		1, 2,
		4, 5,
	})
	if !mat.Equal(truncated, wantTruncated) {
		t.Fatalf("unexpected truncation result %v", mat.Formatted(truncated))
	}

	if same := Canonicalize(m, 3); !mat.Equal(same, m) {
		t.Fatalf("exact length must be unchanged")
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	ex := newTestExtractor(t)
	if _, err := ex.Extract(nil, testSampleRate); !errors.Is(err, ErrDegenerateSignal) {
		t.Fatalf("expected ErrDegenerateSignal, got %v", err)
	}
}

func TestMFCCOfSilenceHitsPowerFloor(t *testing.T) {
	t.Parallel()

	ex := newTestExtractor(t)
	m, err := ex.MFCC(make([]float64, 4096), testSampleRate)
	if err != nil {
		t.Fatalf("MFCC returned error: %v", err)
	}

	// A flat -100 dB mel spectrum only has a DC cepstral term.
	want0 := -100 * math.Sqrt(128)
	r, c := m.Dims()
	for j := 0; j < c; j++ {
		if math.Abs(m.At(0, j)-want0) > 1e-6 {
			t.Fatalf("frame %d: expected c0=%f, got %f", j, want0, m.At(0, j))
		}
		for i := 1; i < r; i++ {
			if math.Abs(m.At(i, j)) > 1e-6 {
				t.Fatalf("frame %d: expected c%d=0, got %g", j, i, m.At(i, j))
			}
		}
	}
}

func TestDCTBasisIsOrthonormal(t *testing.T) {
	t.Parallel()

	basis := dctBasis(16, 16)
	var product mat.Dense
	product.Mul(basis, basis.T())
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(product.At(i, j)-want) > 1e-12 {
				t.Fatalf("B*B^T[%d,%d]=%g, want %g", i, j, product.At(i, j), want)
			}
		}
	}
}

func TestMelScaleRoundTrip(t *testing.T) {
	t.Parallel()

	for _, hz := range []float64{0, 300, 999, 1000, 4000, 8000} {
		if back := melToHz(hzToMel(hz)); math.Abs(back-hz) > 1e-9 {
			t.Fatalf("round trip of %f Hz gave %f", hz, back)
		}
	}
	if math.Abs(hzToMel(1000)-15) > 1e-9 {
		t.Fatalf("expected 1 kHz at mel 15, got %f", hzToMel(1000))
	}
}

func TestMelFilterbankShape(t *testing.T) {
	t.Parallel()

	fb := melFilterbank(testSampleRate, 2048, 40, 0, testSampleRate/2)
	r, c := fb.Dims()
	if r != 40 || c != 1025 {
		t.Fatalf("expected 40x1025, got %dx%d", r, c)
	}

	prevPeak := -1
	for m := 0; m < r; m++ {
		peak, peakVal := 0, 0.0
		for b := 0; b < c; b++ {
			v := fb.At(m, b)
			if v < 0 {
				t.Fatalf("negative weight at (%d,%d)", m, b)
			}
			if v > peakVal {
				peak, peakVal = b, v
			}
		}
		if peakVal == 0 {
			t.Fatalf("filter %d is empty", m)
		}
		if peak < prevPeak {
			t.Fatalf("filter %d peaks below filter %d", m, m-1)
		}
		prevPeak = peak
	}
}

func TestFrameCount(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: 1, 511: 1, 512: 2, 79 * 512: 80, 79*512 + 511: 80}
	for n, want := range cases {
		if got := frameCount(n, 2048, 512); got != want {
			t.Errorf("frameCount(%d)=%d, want %d", n, got, want)
		}
		power := powerSpectrogram(make([]float64, n), 2048, 512)
		if _, frames := power.Dims(); frames != want {
			t.Errorf("powerSpectrogram(%d samples) has %d frames, want %d", n, frames, want)
		}
	}

	// An odd window loses one padded sample, so the last hop needs one more input sample.
	if got := frameCount(512, 5, 512); got != 1 {
		t.Errorf("frameCount(512, 5, 512)=%d, want 1", got)
	}
	if _, frames := powerSpectrogram(make([]float64, 513), 5, 512).Dims(); frames != 2 {
		t.Errorf("odd window: got %d frames, want 2", frames)
	}
}

func TestNewExtractorValidates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Coefficients = 200
	if _, err := NewExtractor(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.FrameLength = 0
	if _, err := NewExtractor(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"fft size":    func(c *Config) { c.FFTSize = 1 },
		"hop length":  func(c *Config) { c.HopLength = 0 },
		"mel bands":   func(c *Config) { c.MelBands = 0 },
		"negative db": func(c *Config) { c.TopDB = -1 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		if _, err := NewExtractor(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}

	cfg = DefaultConfig()
	cfg.Coefficients = cfg.MelBands
	if _, err := NewExtractor(cfg); err != nil {
		t.Fatalf("coefficients equal to mel bands should be accepted: %v", err)
	}
}

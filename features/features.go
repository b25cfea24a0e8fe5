package features

// MFCC Feature Pipeline
//
// This package turns a mono waveform into the fixed-shape matrix used as a training
// input. The steps mirror the usual speech front end:
//
// 1. Centered STFT: the waveform is zero padded by half a window on both sides and cut into
//    frames of FFTSize samples every HopLength samples (1 + len/hop frames), each weighted
//    by a periodic Hann window.
// 2. Power spectrum: squared magnitude of the positive-frequency FFT bins.
// 3. Mel projection: a Slaney-style triangular filterbank (area normalised) maps the bins
//    onto MelBands bands between 0 Hz and Nyquist.
// 4. Decibels: 10*log10 with a 1e-10 floor, clipped to TopDB below the loudest cell.
// 5. Cepstrum: an orthonormal DCT-II over the mel axis keeps the first Coefficients rows.
// 6. Normalisation: one scalar mean and one scalar standard deviation for the whole matrix.
// 7. Canonical length: the first FrameLength frames are kept, or zero frames are appended.
//
// Rows are coefficients and columns are frames throughout.

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDegenerateSignal reports a waveform whose features have no variance to normalise.
	ErrDegenerateSignal = errors.New("degenerate signal")
	// ErrInvalidConfig reports extractor settings that cannot produce a matrix.
	ErrInvalidConfig = errors.New("invalid feature config")
)

// Config controls MFCC extraction. The zero value is not usable; start from DefaultConfig.
type Config struct {
	Coefficients int     `yaml:"coefficients" validate:"gt=0,ltefield=MelBands"`
	FrameLength  int     `yaml:"frame_length" validate:"gt=0"`
	FFTSize      int     `yaml:"fft_size" validate:"gt=1"`
	HopLength    int     `yaml:"hop_length" validate:"gt=0"`
	MelBands     int     `yaml:"mel_bands" validate:"gt=0"`
	TopDB        float64 `yaml:"top_db" validate:"gte=0"`
}

// DefaultConfig returns 13 coefficients over 100 frames with librosa's analysis defaults.
func DefaultConfig() Config {
	return Config{
		Coefficients: 13,
		FrameLength:  100,
		FFTSize:      2048,
		HopLength:    512,
		MelBands:     128,
		TopDB:        80,
	}
}

func (c Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Features is the canonical matrix of one recording.
type Features struct {
	Matrix *mat.Dense
	// RawFrames is the frame count before padding or truncation.
	RawFrames int
}

// Rows converts the matrix into one slice per coefficient.
func (f *Features) Rows() [][]float64 {
	r, _ := f.Matrix.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = append([]float64(nil), f.Matrix.RawRowView(i)...)
	}
	return rows
}

// Extractor computes MFCC matrices. It holds no state between calls.
type Extractor struct {
	cfg Config
}

// NewExtractor validates cfg and returns an Extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg}, nil
}

// Config returns the extractor settings.
func (e *Extractor) Config() Config { return e.cfg }

// Extract computes, normalises and canonicalises the MFCC matrix of samples.
func (e *Extractor) Extract(samples []float64, sampleRate int) (*Features, error) {
	raw, err := e.MFCC(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	_, frames := raw.Dims()

	normalised, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	return &Features{
		Matrix:    Canonicalize(normalised, e.cfg.FrameLength),
		RawFrames: frames,
	}, nil
}

// MFCC returns the (Coefficients x frames) cepstral matrix of samples.
func (e *Extractor) MFCC(samples []float64, sampleRate int) (*mat.Dense, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples provided", ErrDegenerateSignal)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrInvalidConfig, sampleRate)
	}

	power := powerSpectrogram(samples, e.cfg.FFTSize, e.cfg.HopLength)
	filters := melFilterbank(sampleRate, e.cfg.FFTSize, e.cfg.MelBands, 0, float64(sampleRate)/2)

	_, frames := power.Dims()
	mel := mat.NewDense(e.cfg.MelBands, frames, nil)
	mel.Mul(filters, power)
	powerToDB(mel, e.cfg.TopDB)

	basis := dctBasis(e.cfg.Coefficients, e.cfg.MelBands)
	out := mat.NewDense(e.cfg.Coefficients, frames, nil)
	out.Mul(basis, mel)

	return out, nil
}

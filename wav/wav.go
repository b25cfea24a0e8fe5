package wav

// WAV loading
//
// Recordings are decoded at their native sample rate, down-mixed to a single channel by
// averaging and scaled from integer PCM into [-1, 1) so that feature extraction sees the
// same waveform regardless of bit depth.

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// ErrInvalidWAV reports a file the decoder does not recognise as PCM WAV.
var ErrInvalidWAV = errors.New("not a valid wav file")

// AudioSample bundles decoded PCM samples together with contextual metadata.
type AudioSample struct {
	Samples    []float64
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
}

// LoadAudioSample decodes path into mono float samples at the file's own rate.
func LoadAudioSample(path string) (*AudioSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	decoder := gowav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}

	samples, err := toMono(buf, bitDepth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sampleRate := buf.Format.SampleRate
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid sample rate %d", ErrInvalidWAV, path, sampleRate)
	}

	return &AudioSample{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   bitDepth,
		Duration:   float64(len(samples)) / float64(sampleRate),
	}, nil
}

func toMono(buf *audio.IntBuffer, bitDepth int) ([]float64, error) {
	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	scale := math.Exp2(float64(bitDepth - 1))
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}
	return samples, nil
}

package dataset

import (
	"path/filepath"
	"testing"

	"github.com/dianapaula19/intoxicated-speech-detection/config"
	"github.com/dianapaula19/intoxicated-speech-detection/models"
)

func TestFormatFloat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{0.35, "0.35"},
		{-2.5, "-2.5"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e16, "1e+16"},
		{123456, "123456.0"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Fatalf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBundleWriterFormats(t *testing.T) {
	t.Parallel()
	bundle := &models.Bundle{
		Identity: "5012",
		MFCC:     [][]float64{{0.5, -1}, {2, 0}},
		Metadata: models.Metadata{
			models.LabelField: models.NumberValue(1),
			"alc":             models.TextValue("a"),
		},
		SampleRate: 44100,
		RawFrames:  2,
	}

	for _, format := range []string{config.FormatGob, config.FormatJSON} {
		writer := BundleWriter{Dir: filepath.Join(t.TempDir(), "out"), Format: format}
		path, err := writer.Write(bundle)
		if err != nil {
			t.Fatalf("%s: Write: %v", format, err)
		}
		if path != filepath.Join(writer.Dir, "5012."+format) {
			t.Fatalf("%s: path = %s", format, path)
		}

		got, err := ReadBundle(path)
		if err != nil {
			t.Fatalf("%s: ReadBundle: %v", format, err)
		}
		if got.Identity != "5012" || got.MFCC[0][1] != -1 || got.MFCC[1][0] != 2 {
			t.Fatalf("%s: bundle = %+v", format, got)
		}
		if got.Metadata.Label() != 1 || got.Metadata["alc"].Text != "a" || got.SampleRate != 44100 {
			t.Fatalf("%s: metadata = %+v", format, got.Metadata)
		}
	}
}

func TestBundleWriterRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	writer := BundleWriter{Dir: t.TempDir(), Format: "npy"}
	if _, err := writer.Write(&models.Bundle{Identity: "x"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dianapaula19/intoxicated-speech-detection/models"
)

func TestInspectBundle(t *testing.T) {
	t.Parallel()
	result := inspection{Labels: make(map[int]int), Shapes: make(map[string]int)}

	good := &models.Bundle{
		Identity:  "5000",
		MFCC:      [][]float64{{1, 2}, {3, 4}},
		Metadata:  models.Metadata{models.LabelField: models.NumberValue(1)},
		RawFrames: 1,
	}
	wide := &models.Bundle{
		Identity:  "5001",
		MFCC:      [][]float64{{1, 2, 3}, {4, 5, 6}},
		Metadata:  models.Metadata{"alc": models.TextValue("na")},
		RawFrames: 5,
	}
	inspectBundle(&result, good, 2, 2)
	inspectBundle(&result, wide, 2, 2)

	if result.Bundles != 2 || result.Labels[1] != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.BadShape) != 1 || result.BadShape[0] != "5001" {
		t.Fatalf("bad shapes = %v", result.BadShape)
	}
	if len(result.Unlabeled) != 1 || result.Unlabeled[0] != "5001" {
		t.Fatalf("unlabeled = %v", result.Unlabeled)
	}
	if result.Padded != 1 || result.Truncated != 1 {
		t.Fatalf("padded %d truncated %d", result.Padded, result.Truncated)
	}
}

func TestCollectBundles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"5000.gob", "5001.json", "notes.txt", "run_manifest.json", "manifest.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.gob"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := collectBundles(dir, "run_manifest.json")
	if err != nil {
		t.Fatalf("collectBundles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %v", files)
	}
}

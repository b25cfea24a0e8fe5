package dataset

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/dianapaula19/intoxicated-speech-detection/config"
	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const testSampleRate = 16000

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg := config.Default()
	out := t.TempDir()
	cfg.Corpus.Root = root
	cfg.Output.SummaryCSV = filepath.Join(out, "annotation_analysis.csv")
	cfg.Output.BundleDir = filepath.Join(out, "bundles")
	cfg.Progress = false
	return &cfg
}

// writeAnnotation stores labels as an annotation document at root/rel.
func writeAnnotation(t *testing.T, root, rel string, labels map[string]string) {
	t.Helper()
	type label struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	var list []label
	for _, name := range []string{"spn", "alc", "sex", "age", "acc", "drh", "aak", "bak", "ges", "ces", "wea", "extra"} {
		if v, ok := labels[name]; ok {
			list = append(list, label{Name: name, Value: v})
		}
	}
	doc := map[string]any{
		"levels": []any{
			map[string]any{"items": []any{map[string]any{"labels": list}}},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal annotation: %v", err)
	}
	writeFile(t, filepath.Join(root, rel), data)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeSpeechWAV writes a noisy two-tone 16-bit recording of n samples at root/rel.
func writeSpeechWAV(t *testing.T, root, rel string, n int) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	rng := rand.New(rand.NewSource(int64(n)))
	data := make([]int, n)
	for i := range data {
		ts := float64(i) / testSampleRate
		v := 0.4*math.Sin(2*math.Pi*220*ts) + 0.2*math.Sin(2*math.Pi*1800*ts) + 0.05*rng.NormFloat64()
		data[i] = int(math.Max(-1, math.Min(1, v)) * 32000)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := gowav.NewEncoder(f, testSampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: testSampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func strPtr(s string) *string { return &s }

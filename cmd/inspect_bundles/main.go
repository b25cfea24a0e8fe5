package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dianapaula19/intoxicated-speech-detection/dataset"
	"github.com/dianapaula19/intoxicated-speech-detection/models"
)

type inspection struct {
	Bundles   int
	BadShape  []string
	Unlabeled []string
	Labels    map[int]int
	Shapes    map[string]int
	RawFrames []int
	Truncated int
	Padded    int
}

func main() {
	dir := flag.String("dir", "Processed_Stats_ALC", "Directory of feature bundles")
	coefficients := flag.Int("coefficients", 13, "Expected MFCC coefficients per bundle")
	frames := flag.Int("frames", 100, "Expected frames per bundle")
	delimiter := flag.String("delimiter", "_", "Identity delimiter used when the bundles were built")
	flag.Parse()

	manifestName := dataset.ManifestName(*delimiter)
	paths, err := collectBundles(*dir, manifestName)
	if err != nil {
		log.Fatalf("failed to read directory: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("no bundles found in %s", *dir)
	}

	log.Printf("Found %d bundles in %s\n", len(paths), *dir)

	result := inspection{Labels: make(map[int]int), Shapes: make(map[string]int)}
	for _, path := range paths {
		bundle, err := dataset.ReadBundle(path)
		if err != nil {
			log.Fatalf("failed to load %s: %v", path, err)
		}
		inspectBundle(&result, bundle, *coefficients, *frames)
	}

	log.Println("Shape distribution:")
	for shape, count := range result.Shapes {
		log.Printf("  %-12s: %d bundles\n", shape, count)
	}

	log.Println("\nLabel distribution:")
	labels := make([]int, 0, len(result.Labels))
	for label := range result.Labels {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	for _, label := range labels {
		log.Printf("  label %d: %d bundles\n", label, result.Labels[label])
	}

	if len(result.RawFrames) > 0 {
		sort.Ints(result.RawFrames)
		log.Printf("\nRaw frames: min %d, median %d, max %d (%d padded, %d truncated)\n",
			result.RawFrames[0],
			result.RawFrames[len(result.RawFrames)/2],
			result.RawFrames[len(result.RawFrames)-1],
			result.Padded, result.Truncated)
	}

	runs, err := dataset.LoadManifest(filepath.Join(*dir, manifestName))
	if err != nil {
		log.Printf("\nWARNING: could not read run manifest: %v\n", err)
	} else if len(runs) > 0 {
		last := runs[len(runs)-1]
		log.Printf("\nLast run %s (%s): %d written, %d skipped, %d collisions\n",
			last.RunID, last.FinishedAt.Format("2006-01-02 15:04:05"),
			len(last.Written), len(last.Skipped), len(last.Collisions))
	}

	log.Println("\n" + strings.Repeat("=", 60))
	ok := true
	if len(result.BadShape) > 0 {
		ok = false
		log.Printf("✗ %d bundles with unexpected shape: %v\n", len(result.BadShape), result.BadShape)
	}
	if len(result.Unlabeled) > 0 {
		ok = false
		log.Printf("✗ %d bundles without label: %v\n", len(result.Unlabeled), result.Unlabeled)
	}
	if ok {
		log.Printf("✓ All %d bundles are %dx%d and labeled\n", result.Bundles, *coefficients, *frames)
	}
	log.Println(strings.Repeat("=", 60))

	if !ok {
		os.Exit(1)
	}
}

func inspectBundle(result *inspection, bundle *models.Bundle, coefficients, frames int) {
	result.Bundles++

	rows, cols := bundle.Shape()
	result.Shapes[fmt.Sprintf("%dx%d", rows, cols)]++
	if rows != coefficients || cols != frames {
		result.BadShape = append(result.BadShape, bundle.Identity)
	}

	if !bundle.Metadata.Labeled() {
		result.Unlabeled = append(result.Unlabeled, bundle.Identity)
	} else {
		result.Labels[bundle.Metadata.Label()]++
	}

	if bundle.RawFrames > 0 {
		result.RawFrames = append(result.RawFrames, bundle.RawFrames)
		switch {
		case bundle.RawFrames < frames:
			result.Padded++
		case bundle.RawFrames > frames:
			result.Truncated++
		}
	}
}

func collectBundles(dir, manifestName string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == manifestName {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".gob" || ext == ".json" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

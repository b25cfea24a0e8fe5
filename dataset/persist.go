package dataset

import (
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dianapaula19/intoxicated-speech-detection/config"
	"github.com/dianapaula19/intoxicated-speech-detection/models"
	"github.com/dianapaula19/intoxicated-speech-detection/utils"
)

// WriteSummaryCSV writes records under a header of the summary fields. Missing text
// values become empty cells.
func WriteSummaryCSV(path string, records []models.SummaryRecord) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := utils.CreateFolder(dir); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.SummaryFields); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}

	row := make([]string, len(models.SummaryFields))
	for _, r := range records {
		for i, field := range models.SummaryFields {
			switch field {
			case "age":
				row[i] = strconv.Itoa(r.Age)
			case "bak":
				row[i] = formatFloat(r.BAK)
			default:
				row[i] = ""
				if v, _ := r.Text(field); v != nil {
					row[i] = *v
				}
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("error writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("error flushing csv: %w", err)
	}
	return f.Close()
}

// formatFloat renders v the way Python's repr does: shortest round-trip digits, a
// trailing ".0" for integral values and exponent form outside [1e-4, 1e16).
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if v != 0 {
		exp := math.Floor(math.Log10(math.Abs(v)))
		if exp < -4 || exp >= 16 {
			return strconv.FormatFloat(v, 'e', -1, 64)
		}
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// BundleWriter stores one file per bundle under Dir, named after the recording identity.
type BundleWriter struct {
	Dir    string
	Format string
}

// Path returns the file a bundle with identity is written to.
func (bw BundleWriter) Path(identity string) string {
	return filepath.Join(bw.Dir, identity+"."+bw.format())
}

func (bw BundleWriter) format() string {
	if bw.Format == "" {
		return config.FormatGob
	}
	return bw.Format
}

// Write serializes bundle, replacing any earlier file of the same identity.
func (bw BundleWriter) Write(bundle *models.Bundle) (string, error) {
	if err := utils.CreateFolder(bw.Dir); err != nil {
		return "", fmt.Errorf("error creating bundle directory: %w", err)
	}

	path := bw.Path(bundle.Identity)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating bundle file: %w", err)
	}
	defer f.Close()

	switch bw.format() {
	case config.FormatGob:
		err = gob.NewEncoder(f).Encode(bundle)
	case config.FormatJSON:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(bundle)
	default:
		return "", fmt.Errorf("unknown bundle format %q", bw.Format)
	}
	if err != nil {
		return "", fmt.Errorf("error encoding bundle %s: %w", bundle.Identity, err)
	}

	return path, f.Close()
}

// ReadBundle loads a bundle written by BundleWriter. The format follows the file extension.
func ReadBundle(path string) (*models.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening bundle: %w", err)
	}
	defer f.Close()

	var bundle models.Bundle
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case config.FormatJSON:
		err = json.NewDecoder(f).Decode(&bundle)
	case config.FormatGob:
		err = gob.NewDecoder(f).Decode(&bundle)
	default:
		return nil, fmt.Errorf("unknown bundle extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding bundle %s: %w", path, err)
	}
	return &bundle, nil
}

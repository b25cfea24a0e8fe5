package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dianapaula19/intoxicated-speech-detection/corpus"
	"github.com/dianapaula19/intoxicated-speech-detection/utils"
)

// ManifestName is the file name of the run history kept inside a bundle directory. It
// contains the identity delimiter, so no recording identity can produce the same name.
func ManifestName(delimiter string) string {
	if delimiter == "" {
		delimiter = corpus.DefaultIdentityDelimiter
	}
	return "run" + delimiter + "manifest.json"
}

// ManifestPath returns the manifest location inside the bundle directory dir.
func ManifestPath(dir, delimiter string) string {
	return filepath.Join(dir, ManifestName(delimiter))
}

var manifestMu sync.Mutex

// RunManifest is one bundle run as recorded in the manifest.
type RunManifest struct {
	RunID      string         `json:"runId"`
	Root       string         `json:"root"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Written    []string       `json:"written"`
	Skipped    []ManifestSkip `json:"skipped"`
	Collisions []string       `json:"collisions,omitempty"`
}

type ManifestSkip struct {
	Identity string `json:"identity"`
	Path     string `json:"path"`
	Reason   string `json:"reason"`
}

func loadManifestInternal(path string) ([]RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunManifest{}, nil
		}
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	if len(data) == 0 {
		return []RunManifest{}, nil
	}

	var runs []RunManifest
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("error unmarshaling manifest: %w", err)
	}
	return runs, nil
}

// LoadManifest returns every run recorded in the manifest at path, oldest first.
func LoadManifest(path string) ([]RunManifest, error) {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	return loadManifestInternal(path)
}

// AppendManifest adds run to the manifest at path.
func AppendManifest(path string, run RunManifest) error {
	manifestMu.Lock()
	defer manifestMu.Unlock()

	runs, err := loadManifestInternal(path)
	if err != nil {
		return err
	}
	runs = append(runs, run)

	if err := utils.CreateFolder(filepath.Dir(path)); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}
	return nil
}

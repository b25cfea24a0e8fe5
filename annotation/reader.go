package annotation

import (
	"encoding/json"
	"fmt"
	"os"
)

// Label is one (name, value) entry of an annotation item.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type document struct {
	Levels []struct {
		Items []struct {
			Labels []Label `json:"labels"`
		} `json:"items"`
	} `json:"levels"`
}

// ReadLabels parses the annotation at path and returns the labels of the first item of
// the first level.
func ReadLabels(path string) ([]Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation %s: %w", path, err)
	}
	defer f.Close()

	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedAnnotation, path, err)
	}

	if len(doc.Levels) == 0 {
		return nil, fmt.Errorf("%w: %s: no levels", ErrMalformedAnnotation, path)
	}
	if len(doc.Levels[0].Items) == 0 {
		return nil, fmt.Errorf("%w: %s: first level has no items", ErrMalformedAnnotation, path)
	}
	labels := doc.Levels[0].Items[0].Labels
	if labels == nil {
		return nil, fmt.Errorf("%w: %s: first item has no labels", ErrMalformedAnnotation, path)
	}

	return labels, nil
}

// Index flattens labels into a name → raw value map; later duplicates win.
func Index(labels []Label) map[string]string {
	out := make(map[string]string, len(labels))
	for _, l := range labels {
		out[l.Name] = l.Value
	}
	return out
}

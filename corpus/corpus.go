package corpus

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultAudioSuffix       = "_h_00.wav"
	DefaultAnnotationSuffix  = "_h_00_annot.json"
	DefaultIdentityDelimiter = "_"
)

// Item is one matched file of the corpus.
type Item struct {
	// ID is the recording identity derived from the file name.
	ID   string
	Path string
	Name string
}

// Walker discovers files under Root whose names end with Suffix.
type Walker struct {
	Root      string
	Suffix    string
	Delimiter string
	Logger    *slog.Logger
}

// Collect walks Root in lexical order and returns every matching file. Unreadable
// sub-directories are skipped with a warning; an unreadable root is an error.
func (w Walker) Collect() ([]Item, error) {
	info, err := os.Stat(w.Root)
	if err != nil {
		return nil, fmt.Errorf("corpus root %s: %w", w.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", w.Root)
	}

	var items []Item
	err = filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.Root {
				return err
			}
			w.warn("skipping unreadable path", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, w.Suffix) {
			return nil
		}
		items = append(items, Item{
			ID:   Identity(name, w.delimiter()),
			Path: path,
			Name: name,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", w.Root, err)
	}

	return items, nil
}

func (w Walker) delimiter() string {
	if w.Delimiter == "" {
		return DefaultIdentityDelimiter
	}
	return w.Delimiter
}

func (w Walker) warn(msg, path string, err error) {
	if w.Logger == nil {
		return
	}
	w.Logger.Warn(msg, slog.String("path", path), slog.Any("error", err))
}

// Identity returns the part of name before the first delimiter.
func Identity(name, delimiter string) string {
	if delimiter == "" {
		return name
	}
	id, _, _ := strings.Cut(name, delimiter)
	return id
}

// Sibling returns the path of the file next to path whose name swaps suffix for replacement.
func Sibling(path, suffix, replacement string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, strings.TrimSuffix(name, suffix)+replacement)
}

package blueprint

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anchore/go-logger"
	"github.com/anchore/go-logger/adapter/discard"
	"github.com/goccy/go-yaml"
)

type Loader struct {
	Logger logger.Logger
	// IgnoredFiles are skipped when loading a directory.
	IgnoredFiles []string
}

func NewLoader() *Loader {
	return &Loader{
		Logger:       discard.New(),
		IgnoredFiles: []string{".bricks.yaml", "config.yaml"},
	}
}

// Load reads the bricks declared in the given files, in order.
// A directory contributes its JSON and YAML files, sorted by name.
func (l *Loader) Load(paths ...string) (*Blueprint, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no blueprint path given")
	}

	var files []string
	for _, path := range paths {
		found, err := l.files(path)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	bp := &Blueprint{
		Name:   blueprintName(paths[0]),
		logger: l.Logger,
	}
	for _, file := range files {
		l.Logger.WithFields("file", file).Trace("Loading file")
		bricks, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		bp.Bricks = append(bp.Bricks, bricks...)
	}

	l.Logger.WithFields("blueprint", bp.Name, "bricks", len(bp.Bricks)).Info("Loaded bricks")
	return bp, nil
}

func (l *Loader) files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if l.isIgnored(entry.Name()) {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

func (l *Loader) isIgnored(name string) bool {
	for _, ignored := range l.IgnoredFiles {
		if name == ignored {
			return true
		}
	}
	return false
}

func (l *Loader) loadFile(path string) ([]Brick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // we're just reading the file...

	var bricks []Brick
	decoder := yaml.NewDecoder(f)
	for doc := 0; ; doc++ {
		var brick Brick
		err = decoder.Decode(&brick)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %d from file %s: %w", doc, path, err)
		}
		if brick.Kind == "" {
			continue
		}
		if brick.Metadata.Name == "" {
			brick.Metadata.Name = brick.Kind
		}
		l.Logger.WithFields("name", brick.Metadata.Name, "kind", brick.Kind).Debug("Loaded brick")
		bricks = append(bricks, brick)
	}
	return bricks, nil
}

func blueprintName(path string) string {
	name := filepath.Base(filepath.Clean(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

package level

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

//go:embed defaults/*.yaml
var embedded embed.FS

// SourceEmbedded marks levels compiled from the built-in descriptors.
const SourceEmbedded = "embedded"

// Loader resolves level descriptors from directories and the embedded set.
// Search order: custom dir -> ~/.arcade/levels -> ./levels -> embedded.
// A level found in a higher-priority location replaces the one with the
// same ID from a lower one.
type Loader struct {
	Dirs   []string // Highest priority first
	logger *log.Logger
}

// NewLoader creates a loader for the standard search path.
// customDir may be empty. A nil logger uses log.Default().
func NewLoader(customDir string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	var dirs []string
	if customDir != "" {
		dirs = append(dirs, customDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".arcade", "levels"))
	}
	dirs = append(dirs, "levels")
	return &Loader{Dirs: dirs, logger: logger}
}

// LoadAll loads the embedded levels and overlays every directory on the
// search path. Invalid files are logged and skipped.
// Levels are returned sorted by ordinal, then ID.
func (l *Loader) LoadAll() ([]Level, error) {
	base, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Level, len(base))
	for _, lvl := range base {
		byID[lvl.ID()] = lvl
	}

	logger := l.log()
	for i := len(l.Dirs) - 1; i >= 0; i-- {
		dir := l.Dirs[i]
		files, err := Files(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("could not scan level directory", "dir", dir, "error", err)
			}
			continue
		}
		for _, path := range files {
			lvl, err := LoadFile(path)
			if err != nil {
				logger.Warn("skipping invalid level", "path", path, "error", err)
				continue
			}
			if prev, ok := byID[lvl.ID()]; ok {
				logger.Debug("level overridden", "id", lvl.ID(), "from", prev.Source, "to", path)
			}
			byID[lvl.ID()] = lvl
		}
	}

	levels := make([]Level, 0, len(byID))
	for _, lvl := range byID {
		levels = append(levels, lvl)
	}
	sortLevels(levels)
	return levels, nil
}

func (l *Loader) log() *log.Logger {
	if l.logger == nil {
		return log.Default()
	}
	return l.logger
}

// LoadEmbedded compiles the built-in descriptors.
func LoadEmbedded() ([]Level, error) {
	entries, err := embedded.ReadDir("defaults")
	if err != nil {
		return nil, fmt.Errorf("level: cannot read embedded levels: %w", err)
	}

	levels := make([]Level, 0, len(entries))
	for _, e := range entries {
		data, err := embedded.ReadFile("defaults/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("level: cannot read embedded %s: %w", e.Name(), err)
		}
		lvl, err := build(data, SourceEmbedded)
		if err != nil {
			return nil, fmt.Errorf("level: embedded %s: %w", e.Name(), err)
		}
		levels = append(levels, lvl)
	}
	sortLevels(levels)
	return levels, nil
}

// LoadFile loads and compiles a single descriptor file.
func LoadFile(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	lvl, err := build(data, path)
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	return lvl, nil
}

// Files lists the descriptor files under dir, recursively, in lexical order.
func Files(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsDescriptor(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}
	return files, nil
}

// IsDescriptor reports whether path has a descriptor extension.
func IsDescriptor(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func build(data []byte, source string) (Level, error) {
	d, err := Parse(data)
	if err != nil {
		return Level{}, err
	}
	spec, err := Compile(d)
	if err != nil {
		return Level{}, err
	}
	return Level{Descriptor: d, Spec: spec, Source: source}, nil
}

func sortLevels(levels []Level) {
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Ordinal() != levels[j].Ordinal() {
			return levels[i].Ordinal() < levels[j].Ordinal()
		}
		return levels[i].ID() < levels[j].ID()
	})
}

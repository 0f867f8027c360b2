package catalog

import (
	"os"
	"path/filepath"

	"github.com/kbukum/typedflow/config"
	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/logger"
)

// Loader finds definitions by name.
type Loader interface {
	Load(name string) (*Definition, error)
}

// FileLoader loads definitions from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches dirs, in order, for
// {name}.yaml and {name}.yml. Each directory's immediate subdirectories are
// searched after the directory itself.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// NewLoaderFromConfig creates a FileLoader for the configured catalog
// directory.
func NewLoaderFromConfig(cfg config.CatalogConfig) *FileLoader {
	return NewFileLoader(cfg.Dir)
}

// Load returns the first definition file named name. A file that exists but
// does not parse is an error, not a miss.
func (l *FileLoader) Load(name string) (*Definition, error) {
	for _, path := range l.candidates(name) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return nil, errors.NotFound("flow definition", name).WithDetail("dirs", l.dirs)
}

func (l *FileLoader) candidates(name string) []string {
	var paths []string
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			paths = append(paths, filepath.Join(dir, name+ext))
		}
		for _, ext := range []string{".yaml", ".yml"} {
			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			paths = append(paths, matches...)
		}
	}
	return paths
}

// LoadFile reads and parses one definition file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NotFound("flow definition file", path).WithCause(err)
	}
	d, err := Parse(data)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithDetail("path", path)
		}
		return nil, err
	}
	logger.Get("catalog").Debug("flow definition loaded", logger.Fields(
		logger.FieldFlow, d.Name,
		"path", path,
		"stages", len(d.Stages),
	))
	return d, nil
}

// MapLoader serves definitions from memory, keyed by name.
type MapLoader map[string]*Definition

// Load returns the definition stored under name.
func (m MapLoader) Load(name string) (*Definition, error) {
	d, ok := m[name]
	if !ok {
		return nil, errors.NotFound("flow definition", name)
	}
	return d, nil
}

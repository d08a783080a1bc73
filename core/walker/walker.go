package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/folio-dev/folio/core/config"
	"github.com/folio-dev/folio/core/logger"
)

// defaultExcludes are always skipped regardless of configuration.
var defaultExcludes = []string{
	".git", ".folio", "node_modules", "vendor",
	".next", "build", "__pycache__", ".DS_Store",
}

// Walker discovers candidate content files under a project root.
type Walker struct {
	root    string
	exclude []string
}

func New(root string, cfg *config.Config) *Walker {
	exclude := append([]string{}, defaultExcludes...)
	if cfg != nil {
		exclude = append(exclude, cfg.Exclude...)
		if cfg.OutputDir != "" {
			exclude = append(exclude, cfg.OutputDir)
		}
		if cfg.CacheFile != "" {
			exclude = append(exclude, cfg.CacheFile)
		}
	}
	return &Walker{root: filepath.Clean(root), exclude: exclude}
}

// Walk returns every non-excluded regular file under the root, sorted by
// path. Hidden files and the project config file are skipped.
func (w *Walker) Walk() ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if path == w.root {
			return nil
		}
		if w.excluded(path) || strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == "folio.yaml" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	logger.Debug("Walker: discovered %d files under %s", len(files), w.root)
	return files, nil
}

func (w *Walker) excluded(path string) bool {
	relPath, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	relPath = filepath.Clean(relPath)

	for _, exclude := range w.exclude {
		exclude = filepath.Clean(exclude)
		if relPath == exclude ||
			strings.HasPrefix(relPath, exclude+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

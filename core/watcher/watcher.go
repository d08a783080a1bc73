package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/folio-dev/folio/core/logger"
)

const debounceDelay = 500 * time.Millisecond

// Watcher reruns the pipeline when project files change. Bursts of events
// are debounced into a single OnChange call.
type Watcher struct {
	watcher      *fsnotify.Watcher
	root         string
	excludePaths []string

	mutex         sync.Mutex
	debounceTimer *time.Timer

	// OnChange is called after the debounce window closes.
	OnChange func() error
}

func New(root string, excludePaths []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		watcher:      fsWatcher,
		root:         root,
		excludePaths: excludePaths,
		OnChange:     func() error { return nil },
	}, nil
}

// Watch blocks, dispatching debounced change notifications until the watcher
// is closed.
func (w *Watcher) Watch() error {
	if err := w.addWatchersRecursively(w.root); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.shouldExcludePath(event.Name) {
				continue
			}
			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					logger.Debug("Adding watcher for new directory: %s", event.Name)
					w.watcher.Add(event.Name)
				}
			}

			w.debounce()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) debounce() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceDelay, func() {
		logger.Debug("File changes detected, rerunning pipeline...")
		if err := w.OnChange(); err != nil {
			logger.Error("Watcher.OnChange failed: %v", err)
		}
	})
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	return w.watcher.Close()
}

func (w *Watcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	relPath = filepath.Clean(relPath)

	if strings.HasPrefix(filepath.Base(relPath), ".") {
		return true
	}
	for _, excludePath := range w.excludePaths {
		excludePath = filepath.Clean(excludePath)
		if relPath == excludePath ||
			strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		return nil
	})
}

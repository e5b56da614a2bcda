package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// IgnoreChecker decides which paths the watcher skips. Paths are
// relative to the watch root with forward slashes, matching what the
// scanner excludes, so watch mode never rescans for ignored churn.
type IgnoreChecker interface {
	SkipDir(relPath string) bool
	SkipFile(relPath string) bool
}

// Watcher provides recursive file system watching with debouncing.
// Every batch it emits is a signal that the tree changed; the caller
// responds with a full rescan, so batches carry paths only.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	ignore    IgnoreChecker
	rootDir   string
	logger    *slog.Logger
}

// NewWatcher creates a recursive file watcher on the given root
// directory, registering every non-ignored subdirectory.
func NewWatcher(rootDir string, debounce time.Duration, ignore IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(debounce),
		ignore:    ignore,
		rootDir:   rootDir,
		logger:    logger,
	}

	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignore.SkipDir(w.relative(path)) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel that receives debounced change batches.
func (w *Watcher) Events() <-chan []string {
	return w.debouncer.Output()
}

// Start begins listening for file system events. Call this in a
// goroutine. It runs until the watcher is closed.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent filters one fsnotify event and feeds the debouncer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel := w.relative(event.Name)

	// A newly created directory must itself be watched.
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if !w.ignore.SkipDir(rel) {
				if err := w.fsWatcher.Add(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return // directory creation itself does not trigger a rescan
		}
	}

	if w.ignore.SkipFile(rel) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.debouncer.Add(rel)
}

// relative converts an absolute event path to the slash-normalized
// form the ignore rules expect.
func (w *Watcher) relative(absPath string) string {
	rel, err := filepath.Rel(w.rootDir, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return strings.TrimPrefix(filepath.ToSlash(rel), "./")
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

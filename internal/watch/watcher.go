// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before notifying.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes anywhere in a working tree, ignoring dot-prefixed
// paths (the repository directory included).
type Watcher struct {
	Root     string
	Debounce time.Duration

	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// New starts watching every non-dot directory under root.
func New(root string, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		Root:     root,
		Debounce: DefaultDebounce,
		watcher:  fw,
		logger:   logger,
	}

	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}

	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.Root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

// ShouldIgnore reports whether an event path lies under a dot-prefixed
// segment relative to Root.
func (w *Watcher) ShouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil || rel == "." {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Run calls onChange once per settled burst of events until ctx is done or
// the watcher is closed. New directories are watched as they appear.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	// Go 1.23 timers drop stale ticks on Stop and Reset.
	timer := time.NewTimer(w.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			timer.Reset(w.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))

		case <-timer.C:
			onChange()
		}
	}
}

// handle updates the watch list for event and reports whether it counts as a
// change.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if w.ShouldIgnore(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("adding new directory to watcher", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}

	w.logger.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	return true
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

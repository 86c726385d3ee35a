// Package watch reports changes to the docs directory so connected viewers
// can reload.
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

	"github.com/ziadkadry99/doc-web/internal/logging"
)

// DefaultDebounce coalesces bursts of events, such as an editor's
// write-rename-chmod sequence, into one change.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a directory tree and calls OnChange after edits settle.
type Watcher struct {
	Dir      string
	Debounce time.Duration
	OnChange func()
	Logger   *zap.Logger
}

// New creates a Watcher for dir.
func New(dir string, onChange func(), logger *zap.Logger) *Watcher {
	return &Watcher{
		Dir:      dir,
		Debounce: DefaultDebounce,
		OnChange: onChange,
		Logger:   logging.OrNop(logger),
	}
}

// Run watches until ctx is done. It returns an error only if the watch
// could not be set up.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.OrNop(w.Logger)
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := collectDirectories(w.Dir)
	if err != nil {
		return fmt.Errorf("walking %s: %w", w.Dir, err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	logger.Info("watching docs", zap.String("dir", w.Dir), zap.Int("directories", len(dirs)))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !hidden(info.Name()) {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("docs changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if w.OnChange != nil {
				w.OnChange()
			}
		}
	}
}

func collectDirectories(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// relevant drops chmod-only events and editor temp files.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	return !hidden(base) && !strings.HasSuffix(base, "~") && !strings.HasSuffix(base, ".swp")
}

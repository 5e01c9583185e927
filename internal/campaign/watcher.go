package campaign

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits after the last write before
// reloading
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a campaign file into a Store when it changes on disk.
// Invalid content is logged and the previous content kept.
type Watcher struct {
	path     string
	store    *Store
	logger   *zap.Logger
	debounce time.Duration
	reloaded func() // test hook, called after each reload attempt
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, store *Store, logger *zap.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		store:    store,
		logger:   logger.Named("campaign"),
		debounce: DefaultDebounce,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched so
// editors that replace the file by rename are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("Watching campaign file", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Campaign watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Campaign watcher error", zap.Error(err))

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	defer func() {
		if w.reloaded != nil {
			w.reloaded()
		}
	}()

	c, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Ignoring invalid campaign file", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.store.Set(c)
	w.logger.Info("Campaign content reloaded",
		zap.String("name", c.Name),
		zap.Int("milestones", len(c.Milestones)),
		zap.Int("gallery", len(c.Gallery)))
}

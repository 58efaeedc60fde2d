package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settingsDebounce coalesces the burst of events an editor or an atomic
// rename produces.
const settingsDebounce = 150 * time.Millisecond

// SettingsWatcher reloads the settings file whenever it changes on disk.
type SettingsWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.SugaredLogger
	onLoad  func(UserSettings)
	done    chan struct{}
}

// WatchSettings starts watching path and calls onLoad with the re-read
// settings after every change. Unreadable or malformed contents are logged
// and skipped. The parent directory is watched so atomic
// replacements are seen. Watching stops when ctx is cancelled.
func WatchSettings(ctx context.Context, path string, logger *zap.SugaredLogger, onLoad func(UserSettings)) (*SettingsWatcher, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating settings dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &SettingsWatcher{
		path:    filepath.Clean(path),
		watcher: fw,
		logger:  logger,
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}
	go w.eventLoop(ctx)

	logger.Debugw("watching settings", "path", path)
	return w, nil
}

// Done is closed once the watcher has stopped.
func (w *SettingsWatcher) Done() <-chan struct{} {
	return w.done
}

func (w *SettingsWatcher) eventLoop(ctx context.Context) {
	defer close(w.done)
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settingsDebounce)
			} else {
				timer.Reset(settingsDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s, err := LoadSettings(w.path)
			if err != nil {
				w.logger.Warnw("settings changed but could not be read, keeping current", "path", w.path, "error", err)
				continue
			}
			w.onLoad(s)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("settings watcher error", "error", err)
		}
	}
}

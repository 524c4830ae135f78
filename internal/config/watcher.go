package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
	"git.home.luguber.info/inful/wristrelay/internal/logfields"
)

// DefaultDebounce collapses bursts of editor writes into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration file when it changes and hands every
// valid result to a callback. Invalid files are logged and ignored.
type Watcher struct {
	path     string
	debounce time.Duration
	apply    func(*Config)
	watcher  *fsnotify.Watcher
	log      *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher prepares a watcher for path. apply runs on a timer goroutine and
// should only enqueue.
func NewWatcher(path string, debounce time.Duration, apply func(*Config), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve config path").Build()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create file watcher").Build()
	}
	return &Watcher{path: abs, debounce: debounce, apply: apply, watcher: fw, log: logger}, nil
}

// Run watches until ctx is done. The directory is watched rather than the
// file so editors that replace the file are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = w.watcher.Close()
		return errors.WrapError(err, errors.CategoryConfig, "failed to watch config directory").
			WithContext("path", w.path).Build()
	}
	w.log.Info("Starting configuration watcher", slog.String("config_path", w.path))
	defer w.stop()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.log.Debug("Config file change detected", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("Config watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Error("Failed to reload configuration", logfields.Error(err))
		return
	}
	w.log.Info("Configuration reloaded", slog.String("config_path", w.path))
	w.apply(cfg)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if err := w.watcher.Close(); err != nil {
		w.log.Error("Error closing file watcher", logfields.Error(err))
	}
}

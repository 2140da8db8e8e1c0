package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/olympusrt/olympus/logger"
)

// ChangeCallback is invoked with the old and newly loaded configuration
// whenever the watched file changes. It is called with no lock held, per
// the copy-out-then-act discipline in §9.
type ChangeCallback func(old, new *RuntimeConfig)

// Watcher hot-reloads a YAML file, grounded on
// najoast-sngo/config/watcher.go's fsnotify-backed Watcher: it republishes
// a Configure command (here exposed as a callback so this package stays
// free of a message.Message dependency) whenever the file is written.
type Watcher struct {
	path string

	mu      sync.RWMutex
	current *RuntimeConfig

	fsWatcher *fsnotify.Watcher

	cbMu      sync.RWMutex
	callbacks []ChangeCallback
}

// NewWatcher loads path once and arms an fsnotify watch on its
// directory (watching the directory, not the file, survives editors that
// replace the file via rename-on-save).
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create fsnotify watcher: %w", err)
	}
	if path != "" {
		if err := fsw.Add(filepath.Dir(path)); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
		}
	}

	return &Watcher{path: path, current: cfg, fsWatcher: fsw}, nil
}

// Current returns the last successfully loaded configuration.
func (w *Watcher) Current() *RuntimeConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Clone()
}

// OnChange registers a callback invoked after every successful reload.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run observes fsnotify events for path until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsWatcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Log(fmt.Sprintf("config: watch error: %v", err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		logger.Log(fmt.Sprintf("config: reload failed, keeping previous config: %v", err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = next
	w.mu.Unlock()

	w.cbMu.RLock()
	callbacks := append([]ChangeCallback(nil), w.callbacks...)
	w.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(old, next)
	}
}

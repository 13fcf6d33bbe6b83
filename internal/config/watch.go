package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk. Editors often
// replace the file (write to temp, rename over), so the watch is on the
// parent directory rather than the file itself.
type Watcher struct {
	path     string
	onReload func(*Config)
	fw       *fsnotify.Watcher
}

// NewWatcher watches path and invokes onReload with the freshly parsed config
// after each change. Parse failures are swallowed; the previous config stays
// in effect.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{path: path, onReload: onReload, fw: fw}, nil
}

// Run blocks until ctx is cancelled, dispatching reloads as events arrive.
// Events are debounced so a burst of writes triggers a single reload.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(w.path)
			if err != nil {
				continue
			}
			w.onReload(cfg)

		case _, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
		}
	}
}

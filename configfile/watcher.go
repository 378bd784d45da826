package configfile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	glog "github.com/goliatone/go-logger/glog"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher observes the configuration file and invokes a callback after
// external edits settle. The write path renames a temp file over the target,
// so the watch covers the parent directory rather than the file inode.
type Watcher struct {
	mu       sync.Mutex
	path     string
	debounce time.Duration
	onChange func(ctx context.Context)
	logger   glog.Logger

	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	running bool
}

type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithWatcherLogger(logger glog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWatcher(path string, onChange func(ctx context.Context), options ...WatcherOption) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("configfile: watch path is required")
	}
	if onChange == nil {
		return nil, fmt.Errorf("configfile: change callback is required")
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   glog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("configfile: start watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		w.mu.Unlock()
		return fmt.Errorf("configfile: watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fsWatcher
	w.stopCh = make(chan struct{})
	w.running = true
	w.mu.Unlock()

	go w.loop(ctx)
	w.logger.Debug("watching configuration file", "path", w.path)
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stopCh)
	w.watcher.Close()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.running = false
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleCallback(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("configuration watch error", "error", err)
		}
	}
}

func (w *Watcher) scheduleCallback(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.onChange(ctx)
	})
}

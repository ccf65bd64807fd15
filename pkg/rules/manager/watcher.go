package manager

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period after the last change before a reload.
const DefaultDebounceInterval = 250 * time.Millisecond

// FileWatcher triggers a callback when one file changes.
//
// It watches the file's parent directory rather than the file itself, so
// editors that save by writing a temporary file and renaming it over the
// original keep being observed.
type FileWatcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewFileWatcher creates a watcher for path. An interval <= 0 uses DefaultDebounceInterval.
func NewFileWatcher(path string, interval time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		path:     abs,
		interval: interval,
		logger:   logger.With("component", "rules.watcher"),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, invoking onChange
// after each burst of changes to the file. Errors returned by onChange are
// logged and do not stop the watcher.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func() error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fw.mu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(fw.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		fw.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	fw.running = true
	fw.cancel = cancel
	fw.doneCh = make(chan struct{})
	done := fw.doneCh
	fw.mu.Unlock()

	debouncer := NewDebouncer(fw.interval, func() {
		fw.logger.Info("Rules file changed, reloading", "path", fw.path)
		if err := onChange(); err != nil {
			fw.logger.Error("Reload after file change failed", "path", fw.path, "error", err)
		}
	})

	defer func() {
		debouncer.Stop()
		watcher.Close()
		cancel()

		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(done)
	}()

	fw.logger.Info("Watching rules file", "path", fw.path, "debounce", fw.interval)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("Stopped watching rules file", "path", fw.path)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if fw.relevant(event) {
				fw.logger.Debug("Rules file event", "path", event.Name, "op", event.Op.String())
				debouncer.Trigger()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// Stop stops a running watcher and waits for Watch to return.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return
	}
	cancel, done := fw.cancel, fw.doneCh
	fw.mu.Unlock()

	cancel()
	<-done
}

// IsRunning returns true if Watch is active.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

// relevant reports whether event concerns the watched file and may have changed its contents.
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Debouncer collapses a burst of triggers into one callback invocation,
// fired once no trigger has arrived for the interval.
type Debouncer struct {
	interval time.Duration
	callback func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer.
func NewDebouncer(interval time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()
	if !stopped {
		d.callback()
	}
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

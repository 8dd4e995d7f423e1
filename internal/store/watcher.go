package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchDebounce sets how long a file must be quiet before onChange fires.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// Watcher reports changed workspace files of a YAMLStore. It watches the
// directory so that atomic renames are seen as well as in-place writes.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(workspace string)

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a watcher over dir. onChange receives the workspace name
// of every file that changed.
func NewWatcher(dir string, onChange func(workspace string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:      dir,
		debounce: 200 * time.Millisecond,
		logger:   slog.Default(),
		onChange: onChange,
		done:     make(chan struct{}),
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. The directory is created when missing.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("store watcher: creating %s: %w", w.dir, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store watcher: create fsnotify: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("store watcher: watch %s: %w", w.dir, err)
	}
	w.fsWatcher = fsw

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for its goroutine. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	tick := w.debounce / 2
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			ws, ok := workspaceOf(event.Name)
			if !ok {
				continue
			}
			w.mu.Lock()
			w.pending[ws] = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("store watcher error", "error", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for ws, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			ready = append(ready, ws)
		}
	}
	for _, ws := range ready {
		delete(w.pending, ws)
	}
	w.mu.Unlock()

	for _, ws := range ready {
		w.logger.Debug("workspace changed", "workspace", ws)
		w.onChange(ws)
	}
}

// workspaceOf maps a workspace file path to its workspace name. Temp files
// written during atomic saves are ignored.
func workspaceOf(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != ".yaml" {
		return "", false
	}
	return strings.TrimSuffix(base, ".yaml"), true
}

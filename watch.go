package fieldselector

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher keeps a Selector in sync with a YAML schema document on disk. A
// successful reload swaps the current instance atomically; a failed reload
// keeps the previous instance and reports the error. A selector obtained
// from Selector stays valid for as long as the caller holds it, so requests
// in flight never observe a partially built schema.
type Watcher struct {
	path          string
	selectorOpts  []Option
	debounceDelay time.Duration
	onReload      func(*Selector)
	onError       func(error)

	current atomic.Pointer[Selector]
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// WatcherOption is a functional option for configuring the watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets how long file events are coalesced before a
// reload. Editors and atomic writes often produce several events per save;
// the default of 100ms folds them into one reload.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		if delay > 0 {
			w.debounceDelay = delay
		}
	}
}

// WithSelectorOptions sets the options applied to every selector the
// watcher builds, including the initial load. A logger supplied here via
// WithLogger also carries the watcher's own diagnostics.
func WithSelectorOptions(opts ...Option) WatcherOption {
	return func(w *Watcher) {
		w.selectorOpts = opts
	}
}

// WithReloadCallback sets a callback invoked with the new selector after
// every successful reload.
func WithReloadCallback(fn func(*Selector)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// WithErrorCallback sets a callback invoked when a reload fails or the
// underlying file watcher reports an error.
func WithErrorCallback(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// NewWatcher loads the schema document at path and prepares a watcher for
// it. The initial load is synchronous: an unreadable or invalid document
// fails construction rather than starting with no selector, so Selector
// never returns nil afterwards.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:          absPath,
		debounceDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}

	cfg := defaultConfig()
	for _, opt := range w.selectorOpts {
		opt(&cfg)
	}
	w.logger = cfg.logger

	sel, err := LoadFile(w.path, w.selectorOpts...)
	if err != nil {
		return nil, err
	}
	w.current.Store(sel)

	return w, nil
}

// Selector returns the current selector. It never returns nil once
// NewWatcher has succeeded.
func (w *Watcher) Selector() *Selector {
	return w.current.Load()
}

// Start begins watching the schema document for changes. It is a no-op if
// the watcher is already running. The watch ends when ctx is cancelled or
// Stop is called; a stopped watcher may be started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory rather than the file itself so that atomic
	// rename-into-place updates are observed.
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		_ = fsWatcher.Close()
		return err
	}

	w.watcher = fsWatcher
	w.stopCh = make(chan struct{})
	w.stoppedCh = make(chan struct{})
	w.running = true

	w.logger.Info("started watching schema document", zap.String("path", w.path))

	go w.watch(ctx, fsWatcher, w.stopCh, w.stoppedCh)
	return nil
}

// Stop stops watching the schema document. It is a no-op if the watcher is
// not running. The current selector remains available after Stop.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, stoppedCh, fsWatcher := w.stopCh, w.stoppedCh, w.watcher
	w.mu.Unlock()

	close(stopCh)
	<-stoppedCh
	return fsWatcher.Close()
}

// ForceReload reloads the schema document immediately, bypassing the file
// watcher. The current selector is kept on failure.
func (w *Watcher) ForceReload() error {
	sel, err := LoadFile(w.path, w.selectorOpts...)
	if err != nil {
		return err
	}

	w.current.Store(sel)
	if w.onReload != nil {
		w.onReload(sel)
	}
	return nil
}

// watch is the main watch loop. The fsnotify watcher and lifecycle
// channels are passed in so that a later Start, which replaces the
// corresponding fields, cannot race with a loop that is still draining.
func (w *Watcher) watch(ctx context.Context, fsWatcher *fsnotify.Watcher, stopCh <-chan struct{}, stoppedCh chan<- struct{}) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(stoppedCh)
	}()

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("schema watcher stopped due to context cancellation")
			_ = fsWatcher.Close()
			return

		case <-stopCh:
			w.logger.Info("schema watcher stopped")
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			debounceTimer, debounceCh = w.handleFileEvent(event, debounceTimer, debounceCh)

		case <-debounceCh:
			debounceCh = nil
			w.reload()

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("schema watcher error", zap.Error(err))
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// handleFileEvent processes a file system event and returns the updated
// debounce timer.
func (w *Watcher) handleFileEvent(
	event fsnotify.Event,
	debounceTimer *time.Timer,
	debounceCh <-chan time.Time,
) (timer *time.Timer, ch <-chan time.Time) {
	// Only events for our schema document matter.
	if filepath.Clean(event.Name) != w.path {
		return debounceTimer, debounceCh
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return debounceTimer, debounceCh
	}

	w.logger.Debug("schema document changed",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()),
	)

	if debounceTimer != nil {
		debounceTimer.Stop()
	}
	debounceTimer = time.NewTimer(w.debounceDelay)
	return debounceTimer, debounceTimer.C
}

// reload attempts to rebuild the selector from the schema document.
func (w *Watcher) reload() {
	sel, err := LoadFile(w.path, w.selectorOpts...)
	if err != nil {
		w.logger.Error("failed to reload schema document, keeping current selector",
			zap.String("path", w.path),
			zap.Error(err),
		)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	w.current.Store(sel)
	w.logger.Info("schema document reloaded", zap.String("path", w.path))

	if w.onReload != nil {
		w.onReload(sel)
	}
}

package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is how often the fallback poller stats the catalog
// file when fsnotify delivers no events (network mounts, some editors).
const DefaultPollInterval = 2 * time.Second

// CatalogWatcher watches a catalog snapshot file and invokes a callback,
// debounced, when it changes. Writers replace catalog files atomically
// (write + rename), so rename and create events on the parent directory
// count as changes too.
type CatalogWatcher struct {
	path     string
	onChange func()
	debounce *Debouncer
	poll     time.Duration

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	done     chan struct{}
	closed   bool
	lastMod  time.Time
	lastSize int64
}

// NewCatalogWatcher creates a watcher for the given file. The callback
// runs on the watcher's goroutine after the debounce window; keep it
// cheap and hand real work to the owner's event loop.
func NewCatalogWatcher(path string, onChange func()) *CatalogWatcher {
	return &CatalogWatcher{
		path:     path,
		onChange: onChange,
		debounce: NewDebouncer(DefaultDebounceDuration),
		poll:     DefaultPollInterval,
	}
}

// Start begins watching. It returns an error only if the initial watch
// cannot be established; later failures degrade to polling.
func (w *CatalogWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("watcher already closed")
	}
	if w.done != nil {
		return nil // already started
	}

	if st, err := os.Stat(w.path); err == nil {
		w.lastMod = st.ModTime()
		w.lastSize = st.Size()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// Watch the directory: atomic replace swaps the inode out from under
	// a file-level watch.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	go w.run(fsw, w.done)
	return nil
}

func (w *CatalogWatcher) run(fsw *fsnotify.Watcher, done chan struct{}) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.debounce.Trigger(w.onChange)
			}
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// fsnotify errors are non-fatal; the poller covers the gap
		case <-ticker.C:
			if w.statChanged() {
				w.debounce.Trigger(w.onChange)
			}
		}
	}
}

// statChanged reports whether the file's mtime or size moved since the
// last observation, updating the stored values.
func (w *CatalogWatcher) statChanged() bool {
	st, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if st.ModTime().Equal(w.lastMod) && st.Size() == w.lastSize {
		return false
	}
	w.lastMod = st.ModTime()
	w.lastSize = st.Size()
	return true
}

// Close stops watching and cancels any pending debounced callback.
// Idempotent.
func (w *CatalogWatcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	done := w.done
	fsw := w.fsw
	w.done = nil
	w.fsw = nil
	w.mu.Unlock()

	if done != nil {
		close(done)
	}
	if fsw != nil {
		fsw.Close()
	}
	w.debounce.Cancel()
}

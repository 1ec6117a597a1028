package runner

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"skipmatch/internal/logging"
)

// Watcher watches a set of files (a discovery source, a case file) and
// invokes a callback when one of them changes. Rapid editor save bursts are
// debounced per path.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	paths       map[string]bool
	onChange    func(path string)
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	Changes       int
	Triggered     int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// NewWatcher creates a Watcher over the given files. Directories are
// watched rather than the files themselves so atomic rename-style saves
// still produce events.
func NewWatcher(onChange func(path string), paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fsw,
		paths:       make(map[string]bool, len(paths)),
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start begins watching. Non-blocking; the loop runs in a goroutine until
// Stop is called or ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	logging.Watch("watching %d file(s)", len(w.paths))
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			logging.WatchWarn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.paths[abs] {
		return
	}

	w.mu.Lock()
	now := time.Now()
	if last, seen := w.debounceMap[abs]; seen && now.Sub(last) < w.debounceDur {
		w.stats.Changes++
		w.mu.Unlock()
		return
	}
	w.debounceMap[abs] = now
	w.stats.Changes++
	w.stats.Triggered++
	w.stats.LastEventPath = abs
	w.stats.LastEventTime = now
	w.mu.Unlock()

	logging.Watch("change detected: %s", abs)
	w.onChange(abs)
}

// Stop shuts the watcher down and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

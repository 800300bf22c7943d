package style

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kerf-editor/kerf/internal/logger"
)

// Watcher invalidates the resolver's cache as soon as a config file it has
// read changes on disk, instead of waiting out the TTL. Optional: a resolver
// works without one.
type Watcher struct {
	resolver *Resolver
	fw       *fsnotify.Watcher

	mu      sync.Mutex
	tracked map[string]struct{}
	done    chan struct{}
}

// NewWatcher attaches a config watcher to the resolver and starts its event
// loop. Close it when the resolver is discarded.
func NewWatcher(r *Resolver) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	w := &Watcher{
		resolver: r,
		fw:       fw,
		tracked:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	r.mu.Lock()
	r.onConfigFile = w.track
	r.mu.Unlock()
	go w.loop()
	return w, nil
}

func (w *Watcher) track(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.tracked[path]; ok {
		return
	}
	if err := w.fw.Add(path); err != nil {
		logger.Warnf("style: cannot watch config %s: %v", path, err)
		return
	}
	w.tracked[path] = struct{}{}
	logger.Debugf("style: watching config %s", path)
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debugf("style: config %s changed (%s), invalidating cache", event.Name, event.Op)
				// Several files may resolve through one config; dropping the
				// whole cache is cheap and always correct.
				w.resolver.InvalidateAll()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warnf("style: config watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

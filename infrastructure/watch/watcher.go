package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long a file must go without writes before it is
// considered complete
const DefaultSettle = 500 * time.Millisecond

// Watcher reports media segments as they finish being written to a directory.
// Each path is reported once; writes after that are ignored unless the file
// is first removed or renamed.
type Watcher struct {
	inner     *fsnotify.Watcher
	isSegment func(name string) bool
	settle    time.Duration
	logger    *zap.Logger

	// out
	segments chan string
	done     chan struct{}
	stop     chan struct{}
	once     sync.Once
}

// New starts watching dir. isSegment filters file names; settle is the quiet
// period after the last write before a segment is emitted.
func New(dir string, isSegment func(name string) bool, settle time.Duration, logger *zap.Logger) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := inner.Add(dir); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		inner:     inner,
		isSegment: isSegment,
		settle:    settle,
		logger:    logger,
		segments:  make(chan string),
		done:      make(chan struct{}),
		stop:      make(chan struct{}),
	}

	go w.run()
	return w, nil
}

// Segments returns the channel of completed segment paths. It is closed
// when the watcher stops.
func (w *Watcher) Segments() <-chan string {
	return w.segments
}

// Close stops the watcher and waits for it to exit
func (w *Watcher) Close() {
	w.once.Do(func() {
		close(w.stop)
		w.inner.Close()
	})
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.segments)

	pending := make(map[string]time.Time)
	// a path is emitted once until it is removed or renamed away
	emitted := make(map[string]bool)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.inner.Events:
			if !ok {
				return
			}
			if !w.isSegment(filepath.Base(event.Name)) {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				delete(pending, event.Name)
				delete(emitted, event.Name)
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				if emitted[event.Name] {
					w.logger.Debug("ignoring write to emitted segment", zap.String("path", event.Name))
					continue
				}
				pending[event.Name] = time.Now()
			}

		case err, ok := <-w.inner.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range settled(pending, now, w.settle) {
				delete(pending, path)
				emitted[path] = true
				select {
				case w.segments <- path:
				case <-w.stop:
					return
				}
			}

		case <-w.stop:
			return
		}
	}
}

// settled returns the pending paths idle for at least settle, oldest name first
func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}

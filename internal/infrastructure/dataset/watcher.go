package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

const defaultDebounce = 500 * time.Millisecond

// ReloadFunc rebuilds the store from the watched files
type ReloadFunc func(ctx context.Context) error

// Watcher triggers a reload when any watched file is written, created or
// renamed. Bursts of events within the debounce window cause a single reload.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	reload   ReloadFunc
	log      *logger.Logger

	fsw *fsnotify.Watcher
}

// NewWatcher watches the given files (blank paths are ignored). Directories
// are watched instead of the files so editors that replace files are seen.
func NewWatcher(paths []string, debounce time.Duration, reload ReloadFunc, log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool),
		debounce: debounce,
		reload:   reload,
		log:      log.With("service", "DatasetWatcher"),
		fsw:      fsw,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			if ctx.Err() != nil {
				return
			}
			if err := w.reload(ctx); err != nil {
				w.log.Error("dataset reload failed, keeping current store", "error", err)
				return
			}
			w.log.Info("dataset reloaded after file change")
		})
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("dataset file changed", "file", ev.Name, "op", ev.Op.String())
			schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write event
// before ingesting a file. Editors and uploads produce bursts of writes.
const DefaultDebounce = 500 * time.Millisecond

// Ingester indexes a stored upload by name.
type Ingester interface {
	Ingest(storedName string) (int, error)
}

// Watcher re-ingests .txt files as they appear or change in the uploads
// directory, so documents dropped in by hand are searchable without calling
// the ingest endpoint.
type Watcher struct {
	log      *slog.Logger
	dir      string
	debounce time.Duration
	qa       Ingester

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(log *slog.Logger, dir string, debounce time.Duration, qa Ingester) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		log:      log,
		dir:      dir,
		debounce: debounce,
		qa:       qa,
		pending:  make(map[string]*time.Timer),
	}
}

// Watch blocks until the context is cancelled, ingesting changed files.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching uploads", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(strings.ToLower(name), ".txt") {
				continue
			}
			w.schedule(name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// schedule arms (or re-arms) the per-file debounce timer.
func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[name]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()

		chunkCount, err := w.qa.Ingest(name)
		if err != nil {
			w.log.Warn("auto-ingest failed", "file", name, "error", err)
			return
		}
		w.log.Info("auto-ingested", "file", name, "chunks", chunkCount)
	})
}

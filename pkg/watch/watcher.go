package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/types"
)

// ChangeEvent represents a single filesystem change to a source file, an alias
// config file or a watched directory.
type ChangeEvent struct {
	Path  string
	Op    fsnotify.Op
	IsDir bool
}

// Watcher watches a workspace and emits debounced batches of changes. Events keep
// the order in which their paths were first seen.
type Watcher struct {
	rootPath string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher

	mu   sync.Mutex
	dirs map[string]bool
}

// NewWatcher creates a Watcher that recursively watches rootPath. Hidden and
// vendored directories are skipped.
func NewWatcher(rootPath string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{
		rootPath: rootPath,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
		dirs:     make(map[string]bool),
	}

	if err := w.addTree(rootPath); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// addTree walks dir and adds every non-hidden, non-vendored directory.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.rootPath && w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.mu.Lock()
		w.dirs[path] = true
		w.mu.Unlock()
		return nil
	})
}

func (w *Watcher) skipDir(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	rel, err := filepath.Rel(w.rootPath, path)
	return err == nil && types.IsVendored(rel+"/")
}

// Run is the main event loop. It reads fsnotify events, keeps those that can
// start or affect a rename, debounces rapid edits, and sends batched ChangeEvents
// to out. It blocks until ctx is cancelled or the fsnotify channels close.
func (w *Watcher) Run(ctx context.Context, out chan<- []ChangeEvent) error {
	var (
		order   []string
		pending = make(map[string]ChangeEvent)
	)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			ce, accepted := w.classify(ev)
			if !accepted {
				continue
			}
			if prev, seen := pending[ce.Path]; seen {
				ce.Op |= prev.Op
				ce.IsDir = ce.IsDir || prev.IsDir
			} else {
				order = append(order, ce.Path)
			}
			pending[ce.Path] = ce
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", "err", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]ChangeEvent, 0, len(order))
			for _, p := range order {
				batch = append(batch, pending[p])
			}
			order, pending = nil, make(map[string]ChangeEvent)

			select {
			case out <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close shuts down the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// classify turns a raw fsnotify event into a ChangeEvent. Directory creations
// extend the watch set; directory renames drop the old subtree from it.
func (w *Watcher) classify(ev fsnotify.Event) (ChangeEvent, bool) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return ChangeEvent{}, false
	}
	ce := ChangeEvent{Path: ev.Name, Op: ev.Op}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.skipDir(ev.Name) {
				return ChangeEvent{}, false
			}
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Debug("could not add to watch", "path", ev.Name, "err", err)
			}
			ce.IsDir = true
			return ce, true
		}
	}
	if ev.Op.Has(fsnotify.Rename) || ev.Op.Has(fsnotify.Remove) {
		if w.forget(ev.Name) {
			ce.IsDir = true
			return ce, true
		}
	}

	if alias.IsConfigFile(ev.Name) {
		return ce, true
	}
	return ce, types.HasExtension(types.AllExtensions(), filepath.Ext(ev.Name))
}

// forget removes dir and everything below it from the watch set and reports
// whether dir was watched.
func (w *Watcher) forget(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		return false
	}
	for p := range w.dirs {
		if types.IsWithin(dir, p) {
			delete(w.dirs, p)
		}
	}
	return true
}

// Watching reports whether dir is in the watch set.
func (w *Watcher) Watching(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirs[dir]
}

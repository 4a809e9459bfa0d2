package textfile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/core/domain"
)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// ChangeType describes what happened to a regulation file.
type ChangeType int

const (
	// ChangeUpdated means the file was created or written.
	ChangeUpdated ChangeType = iota
	// ChangeDeleted means the file was removed or renamed away.
	ChangeDeleted
)

func (t ChangeType) String() string {
	if t == ChangeDeleted {
		return "deleted"
	}
	return "updated"
}

// Change is a filesystem event on a configured regulation text.
type Change struct {
	Regulation domain.Regulation
	Type       ChangeType
}

// Watcher reports changes to regulation text files. Only the configured
// paths are reported; other files in the same directories are ignored.
type Watcher struct {
	log *zap.Logger

	mu      sync.Mutex
	byPath  map[string]domain.Regulation
	dirs    []string
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher creates a watcher for regs.
func NewWatcher(regs []domain.Regulation, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{log: log, byPath: make(map[string]domain.Regulation, len(regs))}
	seen := make(map[string]bool)
	for _, reg := range regs {
		path := cleanPath(reg.Path)
		w.byPath[path] = reg
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w
}

// Watch starts watching the regulation directories. The returned channel
// is closed when ctx is done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, errors.New("watcher already started")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.watcher = fw

	changes := make(chan Change)
	go w.run(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer func() { _ = w.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// handleFsEvent maps an fsnotify event to a Change, or nil when the event
// concerns an unrelated file or only changes permissions.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	reg, ok := w.byPath[cleanPath(event.Name)]
	if !ok {
		return nil
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return &Change{Regulation: reg, Type: ChangeUpdated}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Regulation: reg, Type: ChangeDeleted}
	}
	return nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

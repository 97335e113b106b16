// Package watch reports batches of changed markdown files under a set of
// roots using fsnotify.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"reqdef/internal/project"
)

const (
	defaultDebounce    = 300 * time.Millisecond
	eventChannelBuffer = 64
)

// Config selects the files the watcher reports.
type Config struct {
	// Debounce is how long changes are collected before a batch is sent.
	Debounce time.Duration
	Include  []string
	Exclude  []string
}

// Change is one file that was written, created or removed.
type Change struct {
	Path    string
	Removed bool
}

type root struct {
	dir  string
	file string // set when the root was a single file
}

// Watcher watches directories recursively and emits debounced batches.
type Watcher struct {
	cfg     Config
	roots   []root
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	events  chan []Change
	mu      sync.Mutex
	pending map[string]fsnotify.Op
}

// New creates a watcher over targets, which may be files or directories.
func New(targets []string, cfg Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	roots := make([]root, 0, len(targets))
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			roots = append(roots, root{dir: abs})
		} else {
			roots = append(roots, root{dir: filepath.Dir(abs), file: abs})
		}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cfg:     cfg,
		roots:   roots,
		fsw:     fsw,
		logger:  logger.With("component", "watch"),
		events:  make(chan []Change, eventChannelBuffer),
		pending: make(map[string]fsnotify.Op),
	}, nil
}

// Events returns the channel of change batches. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan []Change {
	return w.events
}

// Start installs the watches and processes events until ctx is done or
// Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, r := range w.roots {
		if r.file != "" {
			if err := w.fsw.Add(r.dir); err != nil {
				return err
			}
			continue
		}
		if err := w.addRecursive(r.dir); err != nil {
			return err
		}
	}
	go w.processEvents(ctx)
	w.logger.Info("watching for changes", "roots", len(w.roots), "debounce", w.cfg.Debounce)
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && rel != "." && project.ExcludedDir(w.cfg.Exclude, rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "err", err)
		} else {
			w.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.cfg.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "err", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.underDirRoot(path) {
				if err := w.addRecursive(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "err", err)
				}
			}
			return
		}
	}
	if !w.matches(path) {
		return
	}
	w.mu.Lock()
	w.pending[path] |= event.Op
	w.mu.Unlock()
	w.logger.Debug("change detected", "path", path, "op", event.Op.String())
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]Change, 0, len(w.pending))
	for path := range w.pending {
		// a rename or remove followed by a re-create is a write
		_, err := os.Stat(path)
		batch = append(batch, Change{Path: path, Removed: err != nil})
	}
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	select {
	case w.events <- batch:
	case <-ctx.Done():
	}
}

// matches reports whether path is a watched file: either a single-file
// root, or a file under a directory root passing the globs.
func (w *Watcher) matches(path string) bool {
	for _, r := range w.roots {
		if r.file != "" {
			if r.file == path {
				return true
			}
			continue
		}
		if rel, ok := within(r.dir, path); ok && rel != "." && project.Included(w.cfg.Include, w.cfg.Exclude, rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) underDirRoot(path string) bool {
	_, ok := w.relative(path)
	return ok
}

// relative returns path relative to the first directory root containing it.
func (w *Watcher) relative(path string) (string, bool) {
	for _, r := range w.roots {
		if r.file != "" {
			continue
		}
		if rel, ok := within(r.dir, path); ok {
			return rel, true
		}
	}
	return "", false
}

// within returns the slash path of path relative to dir when path is dir
// or lies below it.
func within(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

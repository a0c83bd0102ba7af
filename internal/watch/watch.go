// Package watch rescans source files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cjk-extractor/internal/filewalker"
	"cjk-extractor/internal/parser"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long a path must stay quiet before it is rescanned.
const DefaultDebounce = 100 * time.Millisecond

// Change is the result of rescanning one path.
type Change struct {
	Path string
	// File is nil when the path was removed or could not be read.
	File    *parser.FileInfo
	Removed bool
}

// Watcher watches a tree and rescans changed files with the walker's rules.
type Watcher struct {
	root     string
	walker   *filewalker.Walker
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}
}

// New creates a watcher for root and registers every non-excluded
// directory below it. Directories created later are added as they appear.
func New(root string, walker *filewalker.Walker, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		walker:   walker,
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan string, 64),
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers a Change for every debounced file event until ctx is
// cancelled. Changes are delivered one at a time from the calling goroutine.
func (w *Watcher) Run(ctx context.Context, handle func(Change)) error {
	defer w.stop()

	log.Info().Str("root", w.root).Msg("Watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		case path := <-w.ready:
			handle(w.rescan(path))
		}
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	close(w.done)
	if err := w.fsw.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close watcher")
	}
}

func (w *Watcher) addRecursive(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("path", dir).Msg("Error reading directory")
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if w.walker.IsExcluded(w.root, full, entry.Name()) {
			continue
		}
		if err := w.addRecursive(full); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.walker.IsExcluded(w.root, event.Name, filepath.Base(event.Name)) {
				return
			}
			if err := w.addRecursive(event.Name); err != nil {
				log.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
				return
			}
			// Files written before the watch was registered.
			files, err := w.walker.Walk(context.Background(), event.Name)
			if err == nil {
				for _, f := range files {
					w.schedule(f)
				}
			}
			return
		}
	}

	if !w.walker.Parser().CanParse(event.Name) || w.inExcludedDir(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// inExcludedDir reports whether any ancestor of path below root is excluded.
func (w *Watcher) inExcludedDir(path string) bool {
	for dir := filepath.Dir(path); dir != w.root && len(dir) > len(w.root); dir = filepath.Dir(dir) {
		if w.walker.IsExcluded(w.root, dir, filepath.Base(dir)) {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) rescan(path string) Change {
	info, err := w.walker.Parser().Parse(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Change{Path: path, Removed: true}
		}
		log.Warn().Err(err).Str("file", path).Msg("Failed to rescan file")
		return Change{Path: path}
	}
	return Change{Path: path, File: info}
}

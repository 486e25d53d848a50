// Package watch bridges on-disk file changes to the engine's async
// parse path, adapted from the teacher's fsnotify-based FileWatcher
// down to the one thing this engine needs: turn a write event on a
// matching path into an UpdateTranslationUnitAsync call.
package watch

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/complete-engine/internal/backend"
)

// Submitter is the subset of the engine facade the watcher drives.
type Submitter interface {
	UpdateTranslationUnitAsync(path string, unsaved []backend.UnsavedFile)
}

// Watcher watches a set of root directories and submits a parse task
// for every write event on a path matching glob.
type Watcher struct {
	fsw      *fsnotify.Watcher
	engine   Submitter
	glob     string
	roots    []string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher over roots, submitting parse tasks to engine
// for paths matching glob, debounced by debounce.
func New(engine Submitter, roots []string, glob string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := fsw.Add(root); err != nil {
			log.Printf("watch: add %s: %v", root, err)
		}
	}

	w := &Watcher{
		fsw:      fsw,
		engine:   engine,
		glob:     glob,
		roots:    roots,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		stop:     make(chan struct{}),
	}
	return w, nil
}

// Start launches the event-processing and debounce goroutines.
func (w *Watcher) Start() {
	w.wg.Add(2)
	go w.processEvents()
	go w.flushLoop()
}

// Stop shuts the watcher down and releases the underlying fsnotify
// handle.
func (w *Watcher) Stop() {
	close(w.stop)
	w.wg.Wait()
	w.fsw.Close()
}

// matchesGlob tries the event path both as given and relative to each
// watched root, mirroring the teacher's FileWatcher.shouldProcessPath
// fallback matching.
func (w *Watcher) matchesGlob(path string) bool {
	slashPath := filepath.ToSlash(path)
	if matched, err := doublestar.Match(w.glob, slashPath); err == nil && matched {
		return true
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if matched, err := doublestar.Match(w.glob, filepath.ToSlash(rel)); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.matchesGlob(ev.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[ev.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) flushLoop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.flushDue()
		}
	}
}

func (w *Watcher) flushDue() {
	now := time.Now()
	var due []string

	w.mu.Lock()
	for path, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range due {
		w.engine.UpdateTranslationUnitAsync(path, nil)
	}
}

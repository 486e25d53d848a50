// Package tucache implements the translation-unit cache: the
// path-to-parser-handle map described in spec §4.2. Every method here
// must be called with the engine's parser mutex already held. The
// engine calls CompleteAt on handles returned by Ensure/Handle itself,
// also under that mutex; every other backend call goes through here.
package tucache

import (
	"log"
	"sync"

	"github.com/standardbeagle/complete-engine/internal/backend"
	"github.com/standardbeagle/complete-engine/internal/enginerrors"
)

// Cache maps file path to translation-unit handle.
type Cache struct {
	index *backend.Index

	mu      sync.Mutex
	handles map[string]*backend.TranslationUnit
}

// New wraps idx in a fresh, empty cache.
func New(idx *backend.Index) *Cache {
	return &Cache{
		index:   idx,
		handles: make(map[string]*backend.TranslationUnit),
	}
}

// Ensure returns the handle for path. On a cache miss it parses from
// scratch and immediately reparses once: the backend only does its
// expensive one-time setup (preamble precompilation, in the real clang
// backend this stands in for) during a reparse, so this double-call
// halves steady-state latency thereafter. Preserve this behavior exactly
// — do not optimize it away.
func (c *Cache) Ensure(path string, unsaved []backend.UnsavedFile) (*backend.TranslationUnit, error) {
	c.mu.Lock()
	tu, ok := c.handles[path]
	c.mu.Unlock()

	if !ok {
		newTU, err := c.index.Open(path, unsaved)
		if err != nil {
			log.Printf("tucache: open failed for %s: %v", path, err)
			return nil, enginerrors.NewBackendParseFailure(path, err)
		}
		if err := newTU.Reparse(unsaved); err != nil {
			log.Printf("tucache: cold-open reparse failed for %s: %v", path, err)
			return nil, enginerrors.NewBackendParseFailure(path, err)
		}

		c.mu.Lock()
		c.handles[path] = newTU
		c.mu.Unlock()
		return newTU, nil
	}

	if err := tu.Reparse(unsaved); err != nil {
		log.Printf("tucache: reparse failed for %s: %v", path, err)
		return nil, enginerrors.NewBackendParseFailure(path, err)
	}
	return tu, nil
}

// Update performs the same work as Ensure but discards the handle; used
// by the parse worker, which only cares that the cache is current.
func (c *Cache) Update(path string, unsaved []backend.UnsavedFile) error {
	_, err := c.Ensure(path, unsaved)
	return err
}

// Diagnostics returns path's current diagnostics with Ignored entries
// filtered out. Returns an empty slice if no handle exists for path.
func (c *Cache) Diagnostics(path string) []backend.Diagnostic {
	c.mu.Lock()
	tu, ok := c.handles[path]
	c.mu.Unlock()

	if !ok {
		return nil
	}

	raw, err := tu.Diagnostics()
	if err != nil {
		log.Printf("tucache: diagnostics failed for %s: %v", path, err)
		return nil
	}

	filtered := make([]backend.Diagnostic, 0, len(raw))
	for _, d := range raw {
		if d.Severity == backend.SeverityIgnored {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

// Handle returns the existing handle for path, if any, without touching
// the backend. Used by the completion worker, which completes against
// whatever handle Ensure already produced.
func (c *Cache) Handle(path string) (*backend.TranslationUnit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tu, ok := c.handles[path]
	return tu, ok
}

// Dispose closes every handle and the index. Called once at shutdown.
func (c *Cache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, tu := range c.handles {
		if err := tu.Close(); err != nil {
			log.Printf("tucache: close failed for %s: %v", path, err)
		}
	}
	c.handles = make(map[string]*backend.TranslationUnit)
	if err := c.index.Close(); err != nil {
		log.Printf("tucache: index close failed: %v", err)
	}
}

package engine

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/complete-engine/internal/backend"
	"github.com/standardbeagle/complete-engine/internal/rank"
)

// EnableThreading spawns the parse worker, completion worker, and
// sorting pool. Must be called before any async facade method; calling
// it twice is a no-op (spec §4.7).
func (e *Engine) EnableThreading() {
	if !e.threading.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.ctx = ctx
	e.cancel = cancel

	g, _ := errgroup.WithContext(ctx)
	e.group = g

	g.Go(func() error {
		e.runParseWorker(ctx)
		return nil
	})
	g.Go(func() error {
		e.runCompletionWorker(ctx)
		return nil
	})
	poolSize := e.sortingPoolSize()
	for i := 0; i < poolSize; i++ {
		g.Go(func() error {
			e.runSortingWorker(ctx)
			return nil
		})
	}
}

// threadingEnabled reports whether EnableThreading has run.
func (e *Engine) threadingEnabled() bool {
	return e.threading.Load()
}

func (e *Engine) runParseWorker(ctx context.Context) {
	for {
		task, ok := e.parseSlot.Get()
		if ctx.Err() != nil {
			return
		}
		if !ok {
			continue
		}

		e.parseInFlight.Store(true)
		e.parserMu.Lock()
		if err := e.cache.Update(task.path, task.unsaved); err != nil {
			log.Printf("engine: parse worker: %v", err)
		}
		e.parserMu.Unlock()
		e.parseInFlight.Store(false)
	}
}

func (e *Engine) runCompletionWorker(ctx context.Context) {
	for {
		task, ok := e.completeSlot.Get()
		if ctx.Err() != nil {
			return
		}
		if !ok {
			continue
		}

		// Yield to parse: the user has moved on, a fresh parse will be
		// followed by a fresh completion (spec §4.4 step 2).
		if e.parseSlot.Pending() || e.parseInFlight.Load() {
			continue
		}

		e.parserMu.Lock()
		tu, exists := e.cache.Handle(task.path)
		var cands []backend.CompletionData
		if exists {
			raw, err := tu.CompleteAt(task.line, task.column, task.unsaved)
			if err != nil {
				log.Printf("engine: completion worker: %v", err)
			} else {
				cands = raw
			}
		}
		e.parserMu.Unlock()

		e.snapshotMu.Lock()
		e.snapshot = cands
		e.snapshotMu.Unlock()

		e.readyMu.Lock()
		e.ready = true
		e.readyCond.Broadcast()
		e.readyMu.Unlock()
	}
}

func (e *Engine) runSortingWorker(ctx context.Context) {
	for {
		e.readyMu.Lock()
		for !e.ready && ctx.Err() == nil {
			e.readyCond.Wait()
		}
		e.readyMu.Unlock()
		if ctx.Err() != nil {
			return
		}

		task, ok := e.sortSlot.Get()
		if ctx.Err() != nil {
			return
		}
		if !ok {
			// Interrupted: re-enter the outer loop (spec §4.5 step 5).
			continue
		}

		e.snapshotMu.RLock()
		snapshot := e.snapshot
		e.snapshotMu.RUnlock()

		ranked := rank.Rank(e.rankRepo, task.query, snapshot)
		if len(ranked) == 0 && task.query != "" {
			// Best-effort "did you mean" sugar (spec §1's candidate
			// repository is a black box the spec leaves undefined on a
			// miss; this never feeds back into ranked order or the
			// invariants of spec §8 invariant 4).
			texts := make([]string, len(snapshot))
			for i, c := range snapshot {
				texts[i] = c.InsertionText
			}
			e.suggestMu.Lock()
			e.lastSuggestions = rank.Suggest(task.query, texts, suggestionLimit)
			e.suggestMu.Unlock()
		}
		task.future.Resolve(ranked)
	}
}

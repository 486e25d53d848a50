package engine

import (
	"log"

	"github.com/standardbeagle/complete-engine/internal/backend"
	"github.com/standardbeagle/complete-engine/internal/enginerrors"
)

// UpdateTranslationUnit runs a parse/reparse synchronously on the
// caller's goroutine, under the parser mutex (spec §4.7).
func (e *Engine) UpdateTranslationUnit(path string, unsaved []backend.UnsavedFile) error {
	e.parserMu.Lock()
	defer e.parserMu.Unlock()
	return e.cache.Update(path, unsaved)
}

// UpdateTranslationUnitAsync submits a parse task. If one is already
// pending, the new request is dropped rather than replacing it — the
// documented asymmetry against the complete/sort slots' overwrite
// semantics (spec §9 open question; preserved as specified).
func (e *Engine) UpdateTranslationUnitAsync(path string, unsaved []backend.UnsavedFile) {
	if !e.threadingEnabled() {
		return
	}
	if e.parseSlot.Pending() {
		return
	}
	e.parseSlot.Set(parseTask{path: path, unsaved: unsaved})
}

// CandidatesForLocation runs a completion call synchronously under the
// parser mutex. It does not reparse first — the backend handles
// staleness on its own (spec §4.7).
func (e *Engine) CandidatesForLocation(path string, line, column int, unsaved []backend.UnsavedFile) ([]backend.CompletionData, error) {
	e.parserMu.Lock()
	defer e.parserMu.Unlock()

	tu, ok := e.cache.Handle(path)
	if !ok {
		var err error
		tu, err = e.cache.Ensure(path, unsaved)
		if err != nil {
			return nil, err
		}
	}
	return tu.CompleteAt(line, column, unsaved)
}

// CandidatesForQueryAndLocationAsync is the async refinement/empty-query
// entry point described in spec §4.7. The submission order — sort task
// before completion task — is load-bearing: otherwise the completion
// worker could publish and broadcast before any sort task exists, and
// the wake-up would be lost.
func (e *Engine) CandidatesForQueryAndLocationAsync(query, path string, line, column int, unsaved []backend.UnsavedFile) *Future[[]backend.CompletionData] {
	if !e.threadingEnabled() {
		log.Print(enginerrors.NewThreadingDisabled("candidates_for_query_and_location_async"))
		return Resolved[[]backend.CompletionData](nil)
	}

	if query == "" {
		if !e.parserMu.TryLock() {
			// Busy: the parse worker (or a synchronous caller) holds
			// the mutex. Return resolved-empty; client retries.
			log.Print(enginerrors.NewBusy("candidates_for_query_and_location_async", path))
			return Resolved[[]backend.CompletionData](nil)
		}
		e.parserMu.Unlock()

		e.sortSlot.InterruptWait()

		e.readyMu.Lock()
		e.ready = false
		e.readyMu.Unlock()

		future := NewFuture[[]backend.CompletionData]()
		if old, hadOld := e.sortSlot.Set(sortTask{query: query, future: future}); hadOld {
			old.future.Cancel()
		}
		e.completeSlot.Set(completeTask{path: path, line: line, column: column, unsaved: unsaved})
		return future
	}

	future := NewFuture[[]backend.CompletionData]()
	if old, hadOld := e.sortSlot.Set(sortTask{query: query, future: future}); hadOld {
		old.future.Cancel()
	}
	return future
}

// Diagnostics acquires the parser mutex with a try-lock; if it is held
// elsewhere, returns empty immediately rather than blocking (spec §4.7).
func (e *Engine) Diagnostics(path string) []backend.Diagnostic {
	if !e.parserMu.TryLock() {
		return nil
	}
	defer e.parserMu.Unlock()
	return e.cache.Diagnostics(path)
}

// UpdatingTranslationUnit is a try-lock probe: true if the parser
// mutex is currently held.
func (e *Engine) UpdatingTranslationUnit() bool {
	if e.parserMu.TryLock() {
		e.parserMu.Unlock()
		return false
	}
	return true
}

// Suggestions returns the most recent "did you mean" candidates
// computed when a non-empty query's ranked result came back empty.
// Not part of spec §4.7's facade operations — strictly additive sugar
// that never affects ranking order or the §8 invariants.
func (e *Engine) Suggestions() []string {
	e.suggestMu.Lock()
	defer e.suggestMu.Unlock()
	return e.lastSuggestions
}

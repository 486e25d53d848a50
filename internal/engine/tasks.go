package engine

import "github.com/standardbeagle/complete-engine/internal/backend"

// parseTask carries the arguments of a parse/reparse request. It
// carries no future: update_translation_unit_async has no return
// value to resolve (spec §4.7).
type parseTask struct {
	path    string
	unsaved []backend.UnsavedFile
}

// completeTask carries the arguments of a completion-at-location
// request. It carries no future: the completion worker publishes its
// result as the latest snapshot, and only the paired sortTask's future
// is observable to callers of the facade.
type completeTask struct {
	path    string
	line    int
	column  int
	unsaved []backend.UnsavedFile
}

// sortTask carries a ranking request against whatever snapshot is
// current by the time a sorting-pool worker executes it.
type sortTask struct {
	query  string
	future *Future[[]backend.CompletionData]
}

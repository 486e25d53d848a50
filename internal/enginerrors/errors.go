// Package enginerrors defines the engine's typed error kinds. None of
// these are meant to unwind across a worker boundary: a worker converts
// one of these into a logged value or a resolved-empty future, never a
// panic.
package enginerrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind names one of the five error categories the engine recognizes.
type Kind string

const (
	// KindBackendParseFailure: the parser backend returned a null
	// translation unit. The cache installs no handle for that path.
	KindBackendParseFailure Kind = "backend_parse_failure"

	// KindBackendDiagnostic: a non-fatal diagnostic surfaced by the
	// backend. Never returned as an error value — carried as data on
	// backend.Diagnostic instead; the kind exists for log classification.
	KindBackendDiagnostic Kind = "backend_diagnostic"

	// KindThreadingDisabled: an async method was called before
	// enable_threading(). Non-exceptional; callers get a resolved-empty
	// future.
	KindThreadingDisabled Kind = "threading_disabled"

	// KindBusy: a diagnostics probe or async empty-query call found the
	// parser mutex held. Non-exceptional; the caller is expected to retry.
	KindBusy Kind = "busy"

	// KindInterrupted: a sorting worker's wait was cancelled. Swallowed
	// internally; the worker re-enters its loop.
	KindInterrupted Kind = "interrupted"
)

// EngineError is the error value attached to every engine-level failure.
// It carries enough context (path, operation) to log usefully without
// exposing backend internals to callers.
type EngineError struct {
	Kind       Kind
	Operation  string
	Path       string
	Underlying error
	Timestamp  time.Time
}

func newEngineError(kind Kind, op, path string, err error) *EngineError {
	return &EngineError{
		Kind:       kind,
		Operation:  op,
		Path:       path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewBackendParseFailure reports that the backend produced no usable
// translation unit for path.
func NewBackendParseFailure(path string, err error) *EngineError {
	return newEngineError(KindBackendParseFailure, "open", path, err)
}

// NewThreadingDisabled reports that an async facade method was called
// before enable_threading().
func NewThreadingDisabled(operation string) *EngineError {
	return newEngineError(KindThreadingDisabled, operation, "", nil)
}

// NewBusy reports a failed try-lock against the parser mutex.
func NewBusy(operation, path string) *EngineError {
	return newEngineError(KindBusy, operation, path, nil)
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Kind, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Operation)
}

// Unwrap exposes the underlying error for errors.Is/errors.As.
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ee, ok := err.(*EngineError); ok && ee.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ErrCancelled is the Interrupted-kind error value for a cancelled task.
// A Future does not return it: Get and Poll report cancellation (a task
// dropped by a later Set on its slot, or an explicit Cancel) as ok=false.
var ErrCancelled = newEngineError(KindInterrupted, "cancelled", "", nil)

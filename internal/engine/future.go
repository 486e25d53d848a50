package engine

import "sync"

// Future is a single-shot, resolve-once result cell. It supports a
// blocking Get and a non-blocking Poll, and can be cancelled — the
// overwrite path of a latest-value slot cancels whatever future its
// dropped task was carrying (spec §4.1).
type Future[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	done      bool
	cancelled bool
	value     T
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	f := &Future[T]{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Resolved returns a future already resolved to v — used for the
// ThreadingDisabled and Busy error paths, which are non-exceptional
// and always hand back a resolved-empty future (spec §7).
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Resolve sets the future's value. A no-op if already resolved or
// cancelled — resolution happens at most once.
func (f *Future[T]) Resolve(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return
	}
	f.value = v
	f.done = true
	f.cond.Broadcast()
}

// Cancel resolves the future to its cancelled state. Blocking Get
// callers observe ok=false; Poll callers observe ready=true, ok=false.
func (f *Future[T]) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return
	}
	f.cancelled = true
	f.done = true
	f.cond.Broadcast()
}

// Get blocks until the future resolves. ok is false if the future was
// cancelled rather than resolved with a value.
func (f *Future[T]) Get() (v T, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for !f.done {
		f.cond.Wait()
	}
	return f.value, !f.cancelled
}

// Poll is the non-blocking form of Get: ready reports whether the
// future has settled yet; ok follows Get's semantics when ready.
func (f *Future[T]) Poll() (v T, ready bool, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.done {
		var zero T
		return zero, false, false
	}
	return f.value, true, !f.cancelled
}

// Package slot implements the engine's single-cell mailbox: a bounded
// channel of capacity one with overwrite-on-write semantics. It is the
// collapsing point for bursty producers (keystrokes, cursor moves) and
// the consumer(s) that drain it.
package slot

import "sync"

// Slot is a single-value mailbox. Set never blocks and never fails;
// concurrent Set calls linearize and the latest value wins. Get blocks
// until a value is present, then atomically removes and returns it.
// Typically one goroutine calls Get (the parse and completion
// workers); the sorting pool is the exception, with several worker
// goroutines calling Get on the same slot — delivery is still
// exactly-once per value because only the goroutine that observes
// has==true on wake removes it.
type Slot[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value T
	has   bool
	// epoch increments on every InterruptWait. A waiter captures the
	// epoch it started with and compares on wake; this lets
	// InterruptWait use Broadcast to reliably wake every blocked
	// consumer (not just one), which a single shared boolean flag
	// cannot do — the first waiter to reacquire the lock would clear
	// it before the others ever observe it.
	epoch uint64
}

// New returns an empty Slot.
func New[T any]() *Slot[T] {
	s := &Slot[T]{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Set replaces the slot's contents. If a value was already present and
// unread, it is returned as (old, true) so the caller can dispose of it
// (e.g. cancel a pending future) — it would otherwise simply vanish.
func (s *Slot[T]) Set(v T) (old T, hadOld bool) {
	s.mu.Lock()
	old, hadOld = s.value, s.has
	s.value = v
	s.has = true
	s.mu.Unlock()
	s.cond.Signal()
	return old, hadOld
}

// Get blocks until a value is present or the wait is interrupted. ok is
// false only when InterruptWait woke the caller with no value delivered;
// the caller must re-enter its outer loop rather than treat the zero
// value as real data.
func (s *Slot[T]) Get() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startEpoch := s.epoch
	for !s.has && s.epoch == startEpoch {
		s.cond.Wait()
	}

	if s.has {
		v = s.value
		var zero T
		s.value = zero
		s.has = false
		return v, true
	}

	var zero T
	return zero, false
}

// InterruptWait wakes every blocked Get with a cancellation signal
// rather than a value. Used to flush consumers out of a stale wait
// (e.g. the sorting pool, when a fresh parse invalidates whatever it
// was about to rank, or at shutdown).
func (s *Slot[T]) InterruptWait() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Pending reports whether a value is currently sitting unread in the slot.
func (s *Slot[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.has
}

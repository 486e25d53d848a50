// Package engine implements the facade and the three cooperating
// background workers described by the engine's concurrency design: a
// parse worker, a completion worker, and a fixed sorting pool, bound
// together by latest-value slots and a reader/writer-locked snapshot.
package engine

import (
	"context"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/complete-engine/internal/backend"
	"github.com/standardbeagle/complete-engine/internal/rank"
	"github.com/standardbeagle/complete-engine/internal/slot"
	"github.com/standardbeagle/complete-engine/internal/tucache"
)

// Config is the engine's process-wide tuning surface (spec §6):
// min/max sorting-pool size and whether threading starts enabled.
type Config struct {
	MinAsyncThreads          int
	MaxAsyncThreads          int
	ThreadingEnabledInitially bool
}

const (
	DefaultMinAsyncThreads = 1
	DefaultMaxAsyncThreads = 4

	// suggestionLimit bounds the "did you mean" sugar computed on an
	// empty ranked result (internal/rank.Suggest).
	suggestionLimit = 5
)

// DefaultConfig returns the engine's built-in defaults, used when no
// KDL configuration file overrides them.
func DefaultConfig() Config {
	return Config{
		MinAsyncThreads:           DefaultMinAsyncThreads,
		MaxAsyncThreads:           DefaultMaxAsyncThreads,
		ThreadingEnabledInitially: false,
	}
}

// Engine is the facade: the shared, reference-counted state the parse,
// completion, and sorting workers all operate against (spec §9 — "no
// back-pointers needed", just shared access to one value).
type Engine struct {
	cfg Config

	index   *backend.Index
	cache   *tucache.Cache
	rankRepo *rank.Repository

	parserMu sync.Mutex

	snapshotMu sync.RWMutex
	snapshot   []backend.CompletionData

	parseSlot    *slot.Slot[parseTask]
	completeSlot *slot.Slot[completeTask]
	sortSlot     *slot.Slot[sortTask]

	parseInFlight atomic.Bool

	readyMu   sync.Mutex
	readyCond *sync.Cond
	ready     bool

	threading atomic.Bool

	suggestMu       sync.Mutex
	lastSuggestions []string

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New constructs an engine around a freshly created backend index.
// Index construction failure is the engine's one fatal error (spec §7):
// it propagates directly rather than converting to a resolved-empty
// future, because there is no engine yet to hand one back from.
func New(cfg Config) (*Engine, error) {
	idx, err := backend.NewIndex()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:          cfg,
		index:        idx,
		cache:        tucache.New(idx),
		rankRepo:     rank.NewRepository(),
		parseSlot:    slot.New[parseTask](),
		completeSlot: slot.New[completeTask](),
		sortSlot:     slot.New[sortTask](),
	}
	e.readyCond = sync.NewCond(&e.readyMu)

	if cfg.ThreadingEnabledInitially {
		e.EnableThreading()
	}
	return e, nil
}

// Dispose cancels all background workers, waits for them to exit, and
// releases the backend index. Safe to call once.
func (e *Engine) Dispose() {
	if e.cancel != nil {
		e.cancel()
		// Wake every blocked wait point so workers can observe
		// cancellation and exit instead of hanging forever.
		e.parseSlot.InterruptWait()
		e.completeSlot.InterruptWait()
		e.sortSlot.InterruptWait()
		e.readyMu.Lock()
		e.readyCond.Broadcast()
		e.readyMu.Unlock()
		if e.group != nil {
			if err := e.group.Wait(); err != nil {
				log.Printf("engine: worker shutdown error: %v", err)
			}
		}
	}
	e.cache.Dispose()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Engine) sortingPoolSize() int {
	return clamp(runtime.GOMAXPROCS(0), e.cfg.MinAsyncThreads, e.cfg.MaxAsyncThreads)
}

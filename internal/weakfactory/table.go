package weakfactory

import (
	"runtime"
	"sync"
	"weak"
)

// Table is the weak keyed factory: Get(k) returns the single live value
// for k, synthesizing it via factory on first access (or after the prior
// value for k was reclaimed). Concurrent first accesses for the same key
// collapse to exactly one factory call.
type Table[K comparable, V any] struct {
	factory func(K) *V

	mu        sync.Mutex
	entries   map[K]weak.Pointer[V]
	reclaimed chan K
}

// New constructs a Table backed by factory.
func New[K comparable, V any](factory func(K) *V) *Table[K, V] {
	return &Table[K, V]{
		factory:   factory,
		entries:   make(map[K]weak.Pointer[V]),
		reclaimed: make(chan K, 256),
	}
}

// Get returns the live value for key, constructing one if absent or if
// the previous value for key has been reclaimed. The returned pointer
// must be kept reachable (e.g. held by the caller's handler closure) for
// as long as the caller needs the value to persist.
func (t *Table[K, V]) Get(key K) *V {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.drainReclaimedLocked()

	if wp, ok := t.entries[key]; ok {
		if v := wp.Value(); v != nil {
			return v
		}
		delete(t.entries, key)
	}

	v := t.factory(key)
	t.entries[key] = weak.Make(v)
	runtime.AddCleanup(v, t.notifyReclaimed, key)
	return v
}

// Len reports the number of slots currently tracked (live or not yet
// swept). Exposed for tests and diagnostics, not part of the admit path.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drainReclaimedLocked()
	return len(t.entries)
}

func (t *Table[K, V]) notifyReclaimed(key K) {
	select {
	case t.reclaimed <- key:
	default:
		// Buffer full: the slot stays until the next Get for this key
		// finds wp.Value() == nil and replaces it.
	}
}

func (t *Table[K, V]) drainReclaimedLocked() {
	for {
		select {
		case k := <-t.reclaimed:
			if wp, ok := t.entries[k]; ok && wp.Value() == nil {
				delete(t.entries, k)
			}
		default:
			return
		}
	}
}

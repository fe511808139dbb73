package profiler

import (
	"sort"
	"sync"
	"sync/atomic"
)

// noStart marks an entry with no pending start
const noStart int64 = -1

// entry is the per-name state. sem is the name's dedicated lock: a token in
// the channel means the lock is held. agg is only touched while it is held.
type entry struct {
	name    string
	sem     chan struct{}
	pending atomic.Int64 // start offset in ns since the engine epoch, or noStart
	agg     Aggregate
}

func newEntry(name string) *entry {
	e := &entry{name: name, sem: make(chan struct{}, 1)}
	e.pending.Store(noStart)
	return e
}

// acquire blocks until the lock is held
func (e *entry) acquire() {
	e.sem <- struct{}{}
}

// tryAcquire takes the lock if it is free
func (e *entry) tryAcquire() bool {
	select {
	case e.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// release frees the lock. Releasing a free lock is a no-op.
func (e *entry) release() {
	select {
	case <-e.sem:
	default:
	}
}

// registry maps names to entries. Entries are created lazily and never removed.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*entry)}
}

func (r *registry) lookup(name string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name]
}

// ensure returns the entry for name, creating it if absent. created is true
// only for the caller that inserted it.
func (r *registry) ensure(name string) (e *entry, created bool) {
	if existing := r.lookup(name); existing != nil {
		return existing, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[name]; ok {
		return existing, false
	}
	e = newEntry(name)
	r.entries[name] = e
	return e, true
}

// sorted returns a name-ordered snapshot of the entries
func (r *registry) sorted() []*entry {
	r.mu.RLock()
	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// acquireAll takes every lock in order without ever blocking while holding
// one: when a lock is busy, everything taken so far is released and the
// caller waits on the busy lock alone before starting over.
func acquireAll(entries []*entry) {
	for {
		busy := -1
		for i, e := range entries {
			if !e.tryAcquire() {
				busy = i
				break
			}
		}
		if busy < 0 {
			return
		}

		releaseAll(entries[:busy])
		entries[busy].acquire()
		entries[busy].release()
	}
}

// releaseAll frees the locks in reverse order
func releaseAll(entries []*entry) {
	for i := len(entries) - 1; i >= 0; i-- {
		entries[i].release()
	}
}

package bookings

import "sync"

// Per-resource mutexes serialize the load-check-write sequence of booking
// creation and approval. Two requests for different resources never contend;
// two for the same resource see each other's writes.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var resourceLocks = &lockRegistry{locks: make(map[string]*sync.Mutex)}

// lock acquires the mutex for resourceID, creating it on first use, and
// returns the unlock function.
func (r *lockRegistry) lock(resourceID string) func() {
	r.mu.Lock()
	m, ok := r.locks[resourceID]
	if !ok {
		m = &sync.Mutex{}
		r.locks[resourceID] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}

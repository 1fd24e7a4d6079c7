package notify

import (
	"sync"
)

const defaultDedupCapacity = 10000

// dedupSet tracks message ids already processed in the current listening
// session. It is cleared on every (re)start and never persisted; the
// watermark, not this set, is the durable correctness mechanism. The set is
// bounded: once capacity is reached the oldest entries are evicted.
type dedupSet struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string
	capacity int
}

func newDedupSet(capacity int) *dedupSet {
	if capacity <= 0 {
		capacity = defaultDedupCapacity
	}
	return &dedupSet{
		seen:     make(map[string]struct{}),
		capacity: capacity,
	}
}

// Add records the id and reports whether it was newly seen.
func (d *dedupSet) Add(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return false
	}

	if len(d.order) >= d.capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	return true
}

// Remove evicts an id so a redelivery in the same session can retry it.
func (d *dedupSet) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Reset clears the set for a new listening session.
func (d *dedupSet) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]struct{})
	d.order = d.order[:0]
}

func (d *dedupSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

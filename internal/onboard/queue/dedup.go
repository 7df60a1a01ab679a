package queue

import (
	"sync"
	"time"
)

// dedupWindow remembers request ids for a sliding TTL so redelivered
// duplicates inside the window are dropped instead of reprocessed. It is
// per consumer instance: the partition affinity of the tenant key means
// one consumer sees all of a tenant's messages, which is what makes a
// local window sufficient.
type dedupWindow struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func newDedupWindow(ttl time.Duration) *dedupWindow {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &dedupWindow{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Seen reports whether the id is inside the window without recording it.
// Redelivery of a faulted message must not trip over its own earlier
// attempt, so ids are recorded with Mark only once the message is
// finished. Expired entries are swept opportunistically on each call.
func (d *dedupWindow) Seen(id string) bool {
	if id == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, at := range d.seen {
		if now.Sub(at) > d.ttl {
			delete(d.seen, k)
		}
	}

	at, ok := d.seen[id]
	return ok && now.Sub(at) <= d.ttl
}

// Mark records the id as finished.
func (d *dedupWindow) Mark(id string) {
	if id == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[id] = d.now()
}

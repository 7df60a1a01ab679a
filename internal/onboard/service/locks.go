package service

import "sync"

// tenantLocks serializes invitation attempts per tenant id. The queue
// path already has partition affinity, but the retry scheduler and the
// manual resend path do not; routing all three entry points through the
// same lock closes the write race on the tenant record.
type tenantLocks struct {
	locks sync.Map // map[string]*sync.Mutex
}

// Lock acquires the mutex for key and returns its release func.
func (t *tenantLocks) Lock(key string) func() {
	v, _ := t.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

package corpus

import (
	"context"
	"sync"
)

// keyedLock provides one mutex per owner key. Entries are reference-counted
// and dropped once the last waiter releases, so the map does not grow with
// the number of users ever seen.
type keyedLock struct {
	mu     sync.Mutex
	owners map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{} // capacity 1; holding the token means holding the lock
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{owners: make(map[string]*lockEntry)}
}

// acquire blocks until the key's lock is held or ctx is done. A successful
// acquire must be paired with release; once past this point the write runs
// to completion even if the caller's client has gone away.
func (k *keyedLock) acquire(ctx context.Context, key string) error {
	k.mu.Lock()
	entry, ok := k.owners[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		k.owners[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.drop(key, entry)
		return ctx.Err()
	}
}

func (k *keyedLock) release(key string) {
	k.mu.Lock()
	entry, ok := k.owners[key]
	k.mu.Unlock()
	if !ok {
		return
	}
	<-entry.sem
	k.drop(key, entry)
}

func (k *keyedLock) drop(key string, entry *lockEntry) {
	k.mu.Lock()
	entry.refs--
	if entry.refs <= 0 {
		delete(k.owners, key)
	}
	k.mu.Unlock()
}

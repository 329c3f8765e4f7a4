// Package syncutil provides small concurrency helpers shared across
// the gateway and backend that do not belong to any one domain
// package.
package syncutil

import "sync"

// KeyedMutex hands out a distinct lock per key, used to serialize
// concurrent requests for the same client_id (spec §4.5's thundering-herd
// guard: many simultaneous requests from one vendor should mint at most
// one token, not one per request). Rotation does not use it; it
// serializes per client with a cache lease instead. Grounded on the
// dedup idiom go-zero's own
// core/syncx.SharedCalls implements for a single shared key, generalized
// here to a map of keys since callers need independent locks per
// client_id rather than one global dedup group.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refCountedMutex
}

type refCountedMutex struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*refCountedMutex)}
}

// Lock acquires the lock for key, blocking until available. The
// returned func must be called to release it.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &refCountedMutex{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FakeCache is an in-memory Cache used by unit tests, grounded on the
// same in-memory map-plus-mutex pattern as secretstore.FakeStore.
type FakeCache struct {
	mu           sync.RWMutex
	data         map[string]fakeEntry
	connected    bool
	forceFailGet bool
}

type fakeEntry struct {
	value   []byte
	expires time.Time
}

func NewFakeCache() *FakeCache {
	return &FakeCache{data: make(map[string]fakeEntry), connected: true}
}

func (f *FakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forceFailGet {
		return nil, ErrConnection
	}
	e, ok := f.data[key]
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		return nil, ErrMiss
	}
	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, nil
}

func (f *FakeCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	f.data[key] = fakeEntry{value: cp, expires: expires}
	return nil
}

func (f *FakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *FakeCache) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *FakeCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
		}
	}
	return nil
}

func (f *FakeCache) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *FakeCache) SetForceFailGet(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceFailGet = fail
}

func (f *FakeCache) AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.data[key]; ok && (e.expires.IsZero() || time.Now().Before(e.expires)) {
		return false, nil
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	f.data[key] = fakeEntry{value: []byte(token), expires: expires}
	return true, nil
}

func (f *FakeCache) ReleaseLease(ctx context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.data[key]; ok && string(e.value) == token {
		delete(f.data, key)
	}
	return nil
}

func (f *FakeCache) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

var _ Cache = (*FakeCache)(nil)

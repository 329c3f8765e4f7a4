package secretstore

import (
	"context"
	"sync"
)

// FakeStore is an in-memory Store used by unit tests and local
// development, grounded on the teacher's in-memory repository pattern
// (shared/repository/repository.go keeps map-backed collections guarded
// by a mutex behind the same interface as the Postgres-backed one).
type FakeStore struct {
	mu         sync.RWMutex
	data       map[string][]byte
	connected  bool
	authErr    error
	forceFailGet bool
}

// NewFakeStore returns a FakeStore that is connected and authenticated.
func NewFakeStore() *FakeStore {
	return &FakeStore{data: make(map[string][]byte), connected: true}
}

func (f *FakeStore) Authenticate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		f.connected = false
		return f.authErr
	}
	f.connected = true
	return nil
}

func (f *FakeStore) GetSecret(ctx context.Context, path string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forceFailGet {
		return nil, ErrConnection
	}
	v, ok := f.data[path]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (f *FakeStore) PutSecret(ctx context.Context, path string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	f.data[path] = cp
	return nil
}

func (f *FakeStore) DeleteSecret(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, path)
	return nil
}

func (f *FakeStore) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

// SetAuthError makes subsequent Authenticate calls fail, for exercising
// session-authentication failure handling in tests.
func (f *FakeStore) SetAuthError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authErr = err
}

// SetForceFailGet makes subsequent GetSecret calls return ErrConnection
// regardless of stored data.
func (f *FakeStore) SetForceFailGet(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceFailGet = fail
}

var _ Store = (*FakeStore)(nil)

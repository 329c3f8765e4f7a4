package token

import (
	"sync"
	"time"
)

// KeyRing holds the current HMAC signing key plus, during a rotation's
// grace window, the previous one. Tokens are always signed with the
// current key; verification tries current first, then previous while
// still inside the grace window. Grounded on
// other_examples/5cef3499_..._token_broker.go.go's TokenBroker
// (secret/prevSecret/graceUntil, swapped under a single mutex).
type KeyRing struct {
	mu         sync.RWMutex
	current    keyMaterial
	previous   *keyMaterial
	graceUntil time.Time
}

type keyMaterial struct {
	id  string // key version identifier, carried in the JWT header "kid"
	key []byte
}

// NewKeyRing builds a KeyRing with a single active key and no grace
// window. Used at startup before any rotation has occurred.
func NewKeyRing(keyID string, key []byte) *KeyRing {
	return &KeyRing{current: keyMaterial{id: keyID, key: key}}
}

// Rotate installs newKey as current, demoting the existing current key
// to previous for grace. Subsequent Mint calls use newKey immediately;
// Verify accepts either key until grace elapses. C7's rotation state
// machine rotates client credentials only and does not call this.
func (r *KeyRing) Rotate(newKeyID string, newKey []byte, grace time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.current
	r.previous = &prev
	r.current = keyMaterial{id: newKeyID, key: newKey}
	r.graceUntil = time.Now().Add(grace)
}

// RetirePrevious drops the previous key immediately, independent of the
// grace timer. Like Rotate, it is not called by C7's rotation state
// machine.
func (r *KeyRing) RetirePrevious() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.previous = nil
	r.graceUntil = time.Time{}
}

// SigningKey returns the key and key ID Mint should sign new tokens
// with.
func (r *KeyRing) SigningKey() (keyID string, key []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.id, r.current.key
}

// VerificationKey returns the key registered under keyID, if it is
// still eligible for verification (the current key, or the previous
// key within its grace window). ok is false otherwise.
func (r *KeyRing) VerificationKey(keyID string) (key []byte, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if keyID == r.current.id {
		return r.current.key, true
	}
	if r.previous != nil && keyID == r.previous.id && time.Now().Before(r.graceUntil) {
		return r.previous.key, true
	}
	return nil, false
}

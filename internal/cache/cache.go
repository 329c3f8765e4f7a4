// Package cache abstracts the token/crypto-material cache in front of
// the secret store and the signed-token minting path (spec §4.2, C2).
// The reference implementation is Redis-backed; a FakeCache backs unit
// tests.
package cache

import (
	"context"
	"time"
)

// Cache is the capability set the core depends on. Keys are opaque
// strings; callers build them with the helpers below so the key shape
// stays consistent across the gateway and backend processes.
type Cache interface {
	// Get returns the raw value stored at key, or ErrMiss if absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL stores value at key with the given expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// ScanPrefix returns every key currently stored under prefix.
	// Used to enumerate a client's cached tokens, both on every
	// authentication (authsvc's live-token lookup) and during rotation.
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)

	// InvalidatePrefix deletes every key under prefix in one call,
	// the bulk-invalidation primitive rotation uses when a client's
	// credential is disabled or a signing key is retired.
	InvalidatePrefix(ctx context.Context, prefix string) error

	// IsConnected reports the adapter's last known connectivity state
	// without making a network call.
	IsConnected() bool

	// AcquireLease attempts to atomically create key with value token
	// and the given TTL, succeeding only if key did not already exist
	// (or had expired). This is the distributed-lease primitive the
	// rotation driver uses to serialize ticks for a client_id across
	// process instances (spec §4.7).
	AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)

	// ReleaseLease deletes key only if its current value equals token,
	// so a lease holder never releases a lease another holder has
	// since acquired after this one expired.
	ReleaseLease(ctx context.Context, key, token string) error
}

// Key conventions from spec §4.2: tokens are addressed by jti, with a
// secondary per-client index so a whole client's cached tokens can be
// invalidated without tracking individual jtis elsewhere. rotation-lock
// keys back the distributed lease C7's driver takes per client_id.
const (
	tokenPrefix       = "token:"
	clientIndexPrefix = "client-tokens:"
	rotationLockPrefix = "rotation-lock:"
)

// RotationLockKey returns the distributed-lease key for clientID.
func RotationLockKey(clientID string) string {
	return rotationLockPrefix + clientID
}

// TokenKey returns the cache key a minted token is stored under.
func TokenKey(jti string) string {
	return tokenPrefix + jti
}

// ClientIndexPrefix returns the scan/invalidate prefix covering every
// token index entry for clientID.
func ClientIndexPrefix(clientID string) string {
	return clientIndexPrefix + clientID + ":"
}

// ClientIndexKey returns the index entry recording that jti was minted
// for clientID, so InvalidatePrefix(ClientIndexPrefix(clientID)) can
// find every jti to revoke.
func ClientIndexKey(clientID, jti string) string {
	return ClientIndexPrefix(clientID) + jti
}

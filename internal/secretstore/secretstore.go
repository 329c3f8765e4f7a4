// Package secretstore abstracts the vault that owns client credentials,
// transition records and the token signing key (spec §4.1, C1). The
// reference implementation talks to HashiCorp Vault's KV v2 engine
// through github.com/hashicorp/vault/api; a FakeStore backs unit tests
// and local development.
package secretstore

import "context"

// Store is the capability set the core depends on. Callers only ever
// see NotFound / connection / authentication failures distinguished by
// the error Kind, never a vault-specific type (spec §9: "a small fixed
// capability set").
type Store interface {
	// Authenticate establishes or refreshes the adapter's own session.
	// Called once at startup and again whenever the session has expired.
	Authenticate(ctx context.Context) error

	// GetSecret reads the raw bytes stored at path. Returns a
	// *errors.Error with Kind errors.KindValidation wrapping ErrNotFound
	// semantics (surfaced by IsNotFound) when nothing is stored there.
	GetSecret(ctx context.Context, path string) ([]byte, error)

	// PutSecret writes value at path, creating a new version if the
	// backend is versioned.
	PutSecret(ctx context.Context, path string, value []byte) error

	// DeleteSecret removes path entirely.
	DeleteSecret(ctx context.Context, path string) error

	// IsConnected reports the adapter's last known connectivity state
	// without making a network call. The circuit breakers do not read
	// it; they track call outcomes themselves.
	IsConnected() bool
}

// Path conventions from spec §4.1.
const (
	credPrefix       = "creds/"
	transitionPrefix = "transitions/"
)

// CredentialPath returns the path of the default live credential record
// for clientID.
func CredentialPath(clientID string) string {
	return credPrefix + clientID
}

// CredentialVersionPath returns the path of a specific version of a
// client's credential record.
func CredentialVersionPath(clientID, version string) string {
	return credPrefix + clientID + "/" + version
}

// TransitionPath returns the path of the (at most one) live transition
// record for a client.
func TransitionPath(clientID string) string {
	return transitionPrefix + clientID
}

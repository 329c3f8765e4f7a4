// Package credential implements validation of the legacy client_id +
// shared-secret contract the gateway still accepts at its edge (spec
// §4.4, C4), checked against the hashed secret record the secret store
// holds for that client.
package credential

import "time"

// Status is the lifecycle state of a credential record, driven by C7's
// rotation state machine (spec §4.7).
type Status string

const (
	// StatusActive credentials validate normally and are the only ones
	// minted tokens are issued against going forward.
	StatusActive Status = "ACTIVE"

	// StatusDeprecated credentials are on their way out: a newer ACTIVE
	// credential exists for the same client. They validate only when
	// grace-period acceptance is enabled (off by default).
	StatusDeprecated Status = "DEPRECATED"

	// StatusDisabled credentials never validate. Only an operator sets
	// it; the rotation state machine marks old credentials DEPRECATED
	// and later deletes them, without passing through DISABLED.
	StatusDisabled Status = "DISABLED"
)

// Record is a single version of a client's credential, as stored under
// secretstore.CredentialVersionPath. Multiple Records may exist for one
// client_id during a rotation; at most one is StatusActive at a time.
type Record struct {
	ClientID string `json:"client_id"`
	Version  string `json:"version"`

	// SecretHash is the Argon2id hash of the shared secret (kdf.go),
	// never the secret itself.
	SecretHash string `json:"secret_hash"`

	Status Status `json:"status"`

	// Permissions are the scopes granted to this client, carried into
	// minted tokens (spec §4.4).
	Permissions []string `json:"permissions"`

	CreatedAt time.Time `json:"created_at"`

	// DeprecatedAt is set when this record transitions out of ACTIVE.
	DeprecatedAt *time.Time `json:"deprecated_at,omitempty"`

	// DisabledAt is set when this record stops validating entirely.
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
}

// Usable reports whether a Record in this status may still validate
// successfully. allowDeprecatedGrace implements the spec §9 open
// question: operators may opt into accepting DEPRECATED credentials
// during a rotation's grace window instead of rejecting them outright.
func (r *Record) Usable(allowDeprecatedGrace bool) bool {
	switch r.Status {
	case StatusActive:
		return true
	case StatusDeprecated:
		return allowDeprecatedGrace
	default:
		return false
	}
}

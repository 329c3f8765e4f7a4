package token

import "time"

// Claims is the single claim set this system issues. Unlike the
// teacher's access/refresh split (pkg/gourdiantoken-master), the
// gateway mints one token kind per client_id — there is no refresh
// token, since renewal re-mints from the same validated credential
// (spec §4.3, §4.6).
type Claims struct {
	// ID is the token's unique identifier (jti), used as the cache key
	// and as the unit of revocation.
	ID string `json:"jti"`

	// Subject is the vendor client_id this token was minted for.
	Subject string `json:"sub"`

	Issuer   string   `json:"iss"`
	Audience []string `json:"aud"`

	// Permissions lists the scopes granted to this client, carried
	// through from the credential record at mint time (spec §4.4).
	Permissions []string `json:"permissions"`

	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	NotBefore time.Time `json:"nbf"`

	// Degraded marks a token minted while the secret store was
	// unreachable and validation fell back to cached credential state
	// (spec §4.5, §9 "dgd" claim). Backends may apply stricter
	// permission checks when this is set.
	Degraded bool `json:"dgd,omitempty"`
}

// HasPermission reports whether the claim set grants perm.
func (c *Claims) HasPermission(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

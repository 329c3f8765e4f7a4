package token

import "time"

// Config mirrors the subset of pkg/gourdiantoken-master's
// GourdianTokenConfig this system needs: HS256-only (the gateway and
// backend share a symmetric key, each loading it from its own
// token.signing_key configuration, spec §4.3), a single expiry (no access/refresh split), and a clock
// skew allowance gourdiantoken does not have but spec §4.6's renewal
// window requires.
type Config struct {
	Issuer   string
	Audience []string

	// TTL is how long a minted token is valid for.
	TTL time.Duration

	// ClockSkew is the leeway applied to exp/nbf/iat comparisons,
	// absorbing drift between the gateway and backend clocks.
	ClockSkew time.Duration

	// RenewalWindow is how long before expiry a backend may request
	// renewal through C6 (spec §4.6), and also how long after expiry a
	// token stays eligible for renewal (WithinRenewalGrace).
	RenewalWindow time.Duration
}

func (c *Config) setDefaults() {
	if c.TTL == 0 {
		c.TTL = 15 * time.Minute
	}
	if c.ClockSkew == 0 {
		c.ClockSkew = 30 * time.Second
	}
	if c.RenewalWindow == 0 {
		c.RenewalWindow = 2 * time.Minute
	}
}

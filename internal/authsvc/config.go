package authsvc

import (
	"time"

	"github.com/meridianpay/authgateway/internal/cache"
)

// Config mirrors the gateway-relevant slice of spec §6's recognized
// configuration options.
type Config struct {
	ClockSkew            time.Duration
	TokenTTL             time.Duration
	LockWaitTimeout      time.Duration
	TransitionCacheTTL   time.Duration
	DegradedModeEnabled  bool
	BackendBaseURL       string
	BackendTimeout       time.Duration

	// Sealer encrypts cached token entries at rest (spec §4.2). Nil
	// disables sealing, the shape every zero-value Config (including
	// every existing test's Config{}) already gets.
	Sealer *cache.Sealer
}

func (c *Config) setDefaults() {
	if c.ClockSkew == 0 {
		c.ClockSkew = 5 * time.Second
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Hour
	}
	if c.LockWaitTimeout == 0 {
		c.LockWaitTimeout = 3 * time.Second
	}
	if c.TransitionCacheTTL == 0 {
		c.TransitionCacheTTL = 5 * time.Second
	}
	if c.BackendTimeout == 0 {
		c.BackendTimeout = 10 * time.Second
	}
}

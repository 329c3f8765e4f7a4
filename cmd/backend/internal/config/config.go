// Code scaffolded in the goctl layout. Safe to edit.
package config

import (
	"github.com/zeromicro/go-zero/rest"

	sharedconfig "github.com/meridianpay/authgateway/internal/config"
)

// Config is the backend verification service's process configuration:
// its own REST listener plus the token codec settings it shares with
// the gateway (so both sides agree on issuer/audience/signing key) and
// the address of the gateway it calls back into for renewal.
type Config struct {
	rest.RestConf

	Token sharedconfig.TokenConf

	Gateway struct {
		BaseURL   string `json:"base_url"`
		TimeoutMs int64  `json:"timeout_ms,optional"`
	}
}

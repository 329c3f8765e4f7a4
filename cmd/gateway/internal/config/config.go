// Code scaffolded in the goctl layout. Safe to edit.
package config

import (
	"github.com/zeromicro/go-zero/rest"

	sharedconfig "github.com/meridianpay/authgateway/internal/config"
	"github.com/meridianpay/authgateway/third_party/database"
)

// Config is the gateway process's full configuration: go-zero's REST
// server settings plus the vault/cache/token/rotation/degraded-mode
// surface spec §6 names, and the event sink's Postgres connection.
type Config struct {
	rest.RestConf

	Vault        sharedconfig.VaultConf
	Redis        sharedconfig.RedisConf
	Token        sharedconfig.TokenConf
	Rotation     sharedconfig.RotationConf
	DegradedMode sharedconfig.DegradedModeConf

	AllowDeprecatedGrace bool `json:"allow_deprecated_grace,optional"`

	Backend struct {
		BaseURL    string `json:"base_url"`
		TimeoutMs  int64  `json:"timeout_ms,optional"`
	}

	Events struct {
		Enabled  bool                     `json:"enabled,optional"`
		Postgres database.PostgresConfig `json:"postgres,optional"`
	}
}

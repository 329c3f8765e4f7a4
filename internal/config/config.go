// Package config defines the configuration surface shared by the
// gateway and backend processes (spec §6): vault, cache, token,
// rotation and degraded-mode settings. Each process's own
// internal/config package (cmd/gateway, cmd/backend) embeds these
// alongside its go-zero rest.RestConf, following the teacher's pattern
// of a flat Config struct with typed sub-config fields
// (shared/config/config.go's Database/Redis/Auth).
package config

import (
	"time"

	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/credential"
	"github.com/meridianpay/authgateway/internal/rotation"
	"github.com/meridianpay/authgateway/internal/secretstore"
	"github.com/meridianpay/authgateway/internal/token"
)

// VaultConf is the wire-loadable shape of spec §6's vault.* options.
type VaultConf struct {
	Address                string  `json:"address"`
	Namespace              string  `json:"namespace,optional"`
	MountPath              string  `json:"mount_path,optional"`
	AuthMethod             string  `json:"auth_method,optional"`
	Token                  string  `json:"token,optional,env=VAULT_TOKEN"`
	RoleID                 string  `json:"role_id,optional"`
	SecretID               string  `json:"secret_id,optional,env=VAULT_SECRET_ID"`
	ConnectTimeoutMs       int64   `json:"connect_timeout_ms,optional"`
	ReadTimeoutMs          int64   `json:"read_timeout_ms,optional"`
	RetryCount             int     `json:"retry_count,optional"`
	RetryBackoffMultiplier float64 `json:"retry_backoff_multiplier,optional"`
	ReauthIntervalMs       int64   `json:"reauth_interval_ms,optional"`
}

func (v VaultConf) ToStoreConfig() secretstore.VaultConfig {
	return secretstore.VaultConfig{
		Address:                v.Address,
		Namespace:              v.Namespace,
		MountPath:              v.MountPath,
		AuthMethod:             v.AuthMethod,
		Token:                  v.Token,
		RoleID:                 v.RoleID,
		SecretID:               v.SecretID,
		ConnectTimeout:         millis(v.ConnectTimeoutMs),
		ReadTimeout:            millis(v.ReadTimeoutMs),
		RetryCount:             v.RetryCount,
		RetryBackoffMultiplier: v.RetryBackoffMultiplier,
		ReauthInterval:         millis(v.ReauthIntervalMs),
	}
}

// RedisConf is the wire-loadable shape of the token/metadata cache
// connection (spec §6 doesn't name cache.host/cache.port explicitly but
// they are implied by "a cache" in §2; grounded on the teacher's
// third_party/cache.RedisConfig field names).
type RedisConf struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	Password        string `json:"password,optional,env=REDIS_PASSWORD"`
	DB              int    `json:"db,optional"`
	DialTimeoutMs   int64  `json:"dial_timeout_ms,optional"`
	PingIntervalMs  int64  `json:"ping_interval_ms,optional"`
	TokenTTLSeconds int64  `json:"token_ttl_seconds,optional"`
	CredMetaTTLSeconds int64 `json:"cred_meta_ttl_seconds,optional"`

	// EncryptionKey seals cache values that carry crypto material
	// (minted tokens, the credential fallback record) before they
	// reach Redis (spec §4.2). A 32-byte chacha20poly1305 key; empty
	// disables sealing.
	EncryptionKey string `json:"encryption_key,optional,env=CACHE_ENCRYPTION_KEY"`
}

func (r RedisConf) ToCacheConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Host:         r.Host,
		Port:         r.Port,
		Password:     r.Password,
		DB:           r.DB,
		DialTimeout:  millis(r.DialTimeoutMs),
		PingInterval: millis(r.PingIntervalMs),
	}
}

// CredMetaTTL is the cache.cred_meta_ttl_seconds setting, used as
// credential.ValidatorConfig.FallbackTTL.
func (r RedisConf) CredMetaTTL() time.Duration {
	if r.CredMetaTTLSeconds == 0 {
		return 0
	}
	return time.Duration(r.CredMetaTTLSeconds) * time.Second
}

// ToSealer builds the at-rest cache Sealer from cache.encryption_key.
// Returns a nil Sealer (sealing disabled, not an error) when no key is
// configured, so environments that haven't provisioned one yet still
// start up.
func (r RedisConf) ToSealer() (*cache.Sealer, error) {
	if r.EncryptionKey == "" {
		return nil, nil
	}
	return cache.NewSealer([]byte(r.EncryptionKey))
}

// TokenConf is the wire-loadable shape of spec §6's token.* options.
type TokenConf struct {
	Issuer               string   `json:"issuer"`
	Audience             []string `json:"audience,optional"`
	LifetimeSeconds      int64    `json:"lifetime_seconds,optional"`
	ClockSkewSeconds     int64    `json:"clock_skew_seconds,optional"`
	RenewalEnabled       bool     `json:"renewal_enabled,optional"`
	RenewalGraceSeconds  int64    `json:"renewal_grace_seconds,optional"`
	SigningKeyID         string   `json:"signing_key_id,optional"`
	SigningKey           string   `json:"signing_key,optional,env=TOKEN_SIGNING_KEY"`
}

func (t TokenConf) ToCodecConfig() token.Config {
	return token.Config{
		Issuer:        t.Issuer,
		Audience:      t.Audience,
		TTL:           seconds(t.LifetimeSeconds),
		ClockSkew:     seconds(t.ClockSkewSeconds),
		RenewalWindow: seconds(t.RenewalGraceSeconds),
	}
}

func (t TokenConf) ToKeyRing() *token.KeyRing {
	return token.NewKeyRing(t.SigningKeyID, []byte(t.SigningKey))
}

// RotationConf is the wire-loadable shape of spec §6's rotation.* options.
type RotationConf struct {
	CheckIntervalMs             int64 `json:"check_interval_ms,optional"`
	DefaultTransitionMinutes    int64 `json:"default_transition_minutes,optional"`
}

func (r RotationConf) ToDriverConfig() rotation.DriverConfig {
	return rotation.DriverConfig{CheckInterval: millis(r.CheckIntervalMs)}
}

func (r RotationConf) DefaultTransitionPeriod() time.Duration {
	if r.DefaultTransitionMinutes == 0 {
		return rotation.DefaultTransitionPeriod
	}
	return time.Duration(r.DefaultTransitionMinutes) * time.Minute
}

// DegradedModeConf is the wire-loadable shape of spec §6's
// degraded_mode.* options.
type DegradedModeConf struct {
	Enabled bool `json:"enabled,default=true"`
}

func (d DegradedModeConf) ToValidatorConfig(allowDeprecatedGrace bool, fallbackTTL time.Duration) credential.ValidatorConfig {
	return credential.ValidatorConfig{
		AllowDeprecatedGrace: allowDeprecatedGrace,
		DisableDegradedMode:  !d.Enabled,
		FallbackTTL:          fallbackTTL,
	}
}

func millis(ms int64) time.Duration {
	if ms == 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func seconds(s int64) time.Duration {
	if s == 0 {
		return 0
	}
	return time.Duration(s) * time.Second
}

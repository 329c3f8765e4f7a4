package secretstore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/internal/errors"
)

// VaultConfig configures the HashiCorp Vault adapter. Grounded on the
// payment-service vaultAdapter's VaultConfig, trimmed to the token and
// AppRole auth paths this gateway actually uses and the KV v2 mount the
// credential/transition/signing-key paths live under.
type VaultConfig struct {
	Address   string
	Namespace string
	MountPath string // KV v2 mount, default "secret"

	AuthMethod string // "token" or "approle"
	Token      string
	RoleID     string
	SecretID   string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	RetryCount     int
	RetryBackoffMultiplier float64

	// ReauthInterval drives the background session-refresh loop. Vault
	// leases expire; the adapter re-authenticates before that happens
	// rather than failing the next request.
	ReauthInterval time.Duration
}

func (c *VaultConfig) setDefaults() {
	if c.MountPath == "" {
		c.MountPath = "secret"
	}
	if c.AuthMethod == "" {
		c.AuthMethod = "token"
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 3 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.RetryCount == 0 {
		c.RetryCount = 3
	}
	if c.RetryBackoffMultiplier == 0 {
		c.RetryBackoffMultiplier = 1.5
	}
	if c.ReauthInterval == 0 {
		c.ReauthInterval = 30 * time.Minute
	}
}

// VaultStore implements Store against a real HashiCorp Vault server.
type VaultStore struct {
	client    *vaultapi.Client
	cfg       VaultConfig
	connected atomic.Bool
	stop      chan struct{}
}

// NewVaultStore builds a VaultStore and performs the initial
// authentication. It starts a background goroutine that re-authenticates
// on VaultConfig.ReauthInterval, mirroring the teacher's
// connect-and-verify-on-construct idiom (third_party/cache.NewRedisConnection,
// third_party/database.NewPostgresConnection) generalized to a
// long-lived session that must be kept warm.
func NewVaultStore(ctx context.Context, cfg VaultConfig) (*VaultStore, error) {
	cfg.setDefaults()

	clientCfg := vaultapi.DefaultConfig()
	clientCfg.Address = cfg.Address

	client, err := vaultapi.NewClient(clientCfg)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "create vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	s := &VaultStore{client: client, cfg: cfg, stop: make(chan struct{})}
	if err := s.Authenticate(ctx); err != nil {
		return nil, err
	}

	go s.reauthLoop()
	return s, nil
}

// Close stops the background re-authentication loop.
func (s *VaultStore) Close() {
	close(s.stop)
}

func (s *VaultStore) reauthLoop() {
	ticker := time.NewTicker(s.cfg.ReauthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectTimeout)
			if err := s.Authenticate(ctx); err != nil {
				logx.Errorf("vault re-authentication failed: %v", err)
			}
			cancel()
		}
	}
}

// Authenticate logs the adapter in via the configured method. Token auth
// is a no-op set; AppRole performs a login call, exactly as the
// payment-service vault adapter does for its "token"/"approle" cases.
func (s *VaultStore) Authenticate(ctx context.Context) error {
	switch s.cfg.AuthMethod {
	case "token":
		if s.cfg.Token == "" {
			s.connected.Store(false)
			return errors.Wrap(errors.KindInternal, "vault token auth misconfigured", ErrAuthentication)
		}
		s.client.SetToken(s.cfg.Token)
		s.connected.Store(true)
		return nil

	case "approle":
		if s.cfg.RoleID == "" || s.cfg.SecretID == "" {
			s.connected.Store(false)
			return errors.Wrap(errors.KindInternal, "vault approle auth misconfigured", ErrAuthentication)
		}
		data := map[string]interface{}{
			"role_id":   s.cfg.RoleID,
			"secret_id": s.cfg.SecretID,
		}
		resp, err := s.client.Logical().WriteWithContext(ctx, "auth/approle/login", data)
		if err != nil {
			s.connected.Store(false)
			return errors.Wrap(errors.KindInternal, "vault approle login failed", ErrAuthentication)
		}
		if resp == nil || resp.Auth == nil {
			s.connected.Store(false)
			return errors.Wrap(errors.KindInternal, "vault approle login returned no auth", ErrAuthentication)
		}
		s.client.SetToken(resp.Auth.ClientToken)
		s.connected.Store(true)
		return nil

	default:
		s.connected.Store(false)
		return errors.Wrap(errors.KindInternal, fmt.Sprintf("unsupported vault auth method %q", s.cfg.AuthMethod), ErrAuthentication)
	}
}

func (s *VaultStore) IsConnected() bool { return s.connected.Load() }

func (s *VaultStore) dataPath(path string) string {
	return fmt.Sprintf("%s/data/%s", s.cfg.MountPath, path)
}

func (s *VaultStore) metadataPath(path string) string {
	return fmt.Sprintf("%s/metadata/%s", s.cfg.MountPath, path)
}

// GetSecret reads the "value" field of the KV v2 entry at path.
func (s *VaultStore) GetSecret(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	secret, err := s.client.Logical().ReadWithContext(ctx, s.dataPath(path))
	if err != nil {
		s.connected.Store(false)
		return nil, errors.Wrap(errors.KindDependencyUnavail, fmt.Sprintf("read secret %s", path), ErrConnection)
	}
	s.connected.Store(true)
	if secret == nil || secret.Data == nil {
		return nil, errors.Wrap(errors.KindValidation, fmt.Sprintf("secret %s not found", path), ErrNotFound)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.Wrap(errors.KindValidation, fmt.Sprintf("secret %s not found", path), ErrNotFound)
	}
	raw, ok := data["value"].(string)
	if !ok {
		return nil, errors.Wrap(errors.KindValidation, fmt.Sprintf("secret %s malformed", path), ErrNotFound)
	}
	return []byte(raw), nil
}

// PutSecret writes value as the "value" field of a new KV v2 version.
func (s *VaultStore) PutSecret(ctx context.Context, path string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	writeData := map[string]interface{}{
		"data": map[string]interface{}{
			"value": string(value),
		},
	}
	_, err := s.client.Logical().WriteWithContext(ctx, s.dataPath(path), writeData)
	if err != nil {
		s.connected.Store(false)
		return errors.Wrap(errors.KindDependencyUnavail, fmt.Sprintf("write secret %s", path), ErrConnection)
	}
	s.connected.Store(true)
	return nil
}

// DeleteSecret permanently removes path, including all historical
// versions (metadata delete), matching the payment-service adapter's
// "permanent delete" semantics.
func (s *VaultStore) DeleteSecret(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	_, err := s.client.Logical().DeleteWithContext(ctx, s.metadataPath(path))
	if err != nil {
		s.connected.Store(false)
		return errors.Wrap(errors.KindDependencyUnavail, fmt.Sprintf("delete secret %s", path), ErrConnection)
	}
	s.connected.Store(true)
	return nil
}

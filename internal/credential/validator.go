package credential

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/errors"
	"github.com/meridianpay/authgateway/internal/secretstore"
)

// fallbackPrefix namespaces the cached copy of the last-known-good
// credential record used for degraded-mode validation (spec §4.5).
const fallbackPrefix = "cred-fallback:"

func fallbackKey(clientID string) string {
	return fallbackPrefix + clientID
}

// ValidatorConfig controls the spec §9 open question on whether
// DEPRECATED credentials validate during a rotation's grace window.
type ValidatorConfig struct {
	AllowDeprecatedGrace bool

	// DisableDegradedMode turns off the cached-record fallback when the
	// secret store is unreachable (spec §6 degraded_mode.enabled,
	// default true — so the zero value here is "enabled").
	DisableDegradedMode bool

	// FallbackTTL is how long a cached credential record remains
	// eligible for degraded-mode validation after the secret store
	// was last reachable.
	FallbackTTL time.Duration

	// Sealer encrypts the cached fallback record at rest, since it
	// carries SecretHash (spec §4.2). Nil disables sealing.
	Sealer *cache.Sealer
}

func (c *ValidatorConfig) setDefaults() {
	if c.FallbackTTL == 0 {
		c.FallbackTTL = 10 * time.Minute
	}
}

// Validator checks the legacy client_id + shared-secret pair against
// the secret store, falling back to a cached copy of the credential
// record when the store is unreachable (spec §4.4, §4.5). Grounded on
// the teacher's loginLogic.go (fetch record, bcrypt.CompareHashAndPassword,
// reject on mismatch) generalized with a degraded-mode path the teacher
// has no equivalent of.
type Validator struct {
	store secretstore.Store
	cache cache.Cache
	cfg   ValidatorConfig
}

func NewValidator(store secretstore.Store, c cache.Cache, cfg ValidatorConfig) *Validator {
	cfg.setDefaults()
	return &Validator{store: store, cache: c, cfg: cfg}
}

// Validate checks clientID/secret against the client's single default
// credential record (no rotation in progress). Returns the matching
// Record plus whether the secret store had to be bypassed in favor of
// cached state.
func (v *Validator) Validate(ctx context.Context, clientID, secret string) (*Record, bool, error) {
	return v.ValidateCandidates(ctx, clientID, []string{secretstore.CredentialPath(clientID)}, secret)
}

// ValidateCandidates checks secret against every path in order,
// succeeding on the first match (spec §4.4: "C4 is called once per
// candidate record and returns true on the first match"). paths is
// either the single default path (no rotation) or
// {CredentialVersionPath(old), CredentialVersionPath(new)} during
// DUAL_ACTIVE (spec §4.5 step 4). If every candidate fails with a
// connection error, falls back to the cached last-known-good record.
func (v *Validator) ValidateCandidates(ctx context.Context, clientID string, paths []string, secret string) (*Record, bool, error) {
	connFailures := 0
	var lastErr error

	for _, path := range paths {
		record, err := v.fetchRecordAtPath(ctx, path)
		if err != nil {
			if secretstore.IsConnectionFailure(err) {
				connFailures++
			}
			lastErr = err
			continue
		}

		if !record.Usable(v.cfg.AllowDeprecatedGrace) {
			lastErr = errors.New(errors.KindAuthentication, "credential not usable")
			continue
		}

		match, err := CompareSecret(record.SecretHash, secret)
		if err != nil {
			return nil, false, err
		}
		if !match {
			lastErr = errors.New(errors.KindAuthentication, "credential mismatch")
			continue
		}

		v.storeFallback(ctx, record)
		return record, false, nil
	}

	if len(paths) > 0 && connFailures == len(paths) && !v.cfg.DisableDegradedMode {
		record, err := v.fetchFallback(ctx, clientID)
		if err != nil {
			return nil, false, errors.Wrap(errors.KindDependencyUnavail, "secret store unavailable, no cached credential", lastErr)
		}
		if !record.Usable(v.cfg.AllowDeprecatedGrace) {
			return nil, false, errors.New(errors.KindAuthentication, "credential not usable")
		}
		match, err := CompareSecret(record.SecretHash, secret)
		if err != nil {
			return nil, false, err
		}
		if !match {
			return nil, false, errors.New(errors.KindAuthentication, "credential mismatch")
		}
		logx.Infof("validating client %s against cached credential: secret store unreachable", clientID)
		return record, true, nil
	}

	if lastErr == nil {
		lastErr = errors.New(errors.KindAuthentication, "unknown client")
	}
	return nil, false, lastErr
}

func (v *Validator) fetchRecordAtPath(ctx context.Context, path string) (*Record, error) {
	raw, err := v.store.GetSecret(ctx, path)
	if err != nil {
		if secretstore.IsNotFound(err) {
			return nil, errors.New(errors.KindAuthentication, "unknown client")
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "decode credential record", err)
	}
	return &record, nil
}

func (v *Validator) fetchFallback(ctx context.Context, clientID string) (*Record, error) {
	raw, err := v.cache.Get(ctx, fallbackKey(clientID))
	if err != nil {
		return nil, errors.Wrap(errors.KindAuthentication, "unknown client", err)
	}
	if v.cfg.Sealer != nil {
		raw, err = v.cfg.Sealer.Open(raw)
		if err != nil {
			return nil, errors.Wrap(errors.KindAuthentication, "unknown client", err)
		}
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "decode cached credential record", err)
	}
	return &record, nil
}

func (v *Validator) storeFallback(ctx context.Context, record *Record) {
	raw, err := json.Marshal(record)
	if err != nil {
		logx.Errorf("encode credential fallback for %s: %v", record.ClientID, err)
		return
	}
	if v.cfg.Sealer != nil {
		raw, err = v.cfg.Sealer.Seal(raw)
		if err != nil {
			logx.Errorf("seal credential fallback for %s: %v", record.ClientID, err)
			return
		}
	}
	if err := v.cache.SetWithTTL(ctx, fallbackKey(record.ClientID), raw, v.cfg.FallbackTTL); err != nil {
		logx.Errorf("cache credential fallback for %s: %v", record.ClientID, err)
	}
}

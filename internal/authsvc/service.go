// Package authsvc implements the gateway's authentication service (spec
// §4.5, C5): validate->mint->cache, with a per-client in-process lock
// against thundering-herd on cache miss and a degraded-mode fallback to
// cached credential metadata when the secret store is unreachable.
package authsvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/correlation"
	"github.com/meridianpay/authgateway/internal/credential"
	"github.com/meridianpay/authgateway/internal/errors"
	"github.com/meridianpay/authgateway/internal/events"
	"github.com/meridianpay/authgateway/internal/resilience"
	"github.com/meridianpay/authgateway/internal/rotation"
	"github.com/meridianpay/authgateway/internal/secretstore"
	"github.com/meridianpay/authgateway/internal/syncutil"
	"github.com/meridianpay/authgateway/internal/token"
)

// AuthResult is returned on a successful authentication: the minted or
// cached token, its expiry, and whether it was produced via the
// degraded-mode fallback.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Degraded  bool
}

// Service orchestrates C1 (secret store), C4 (credential validation), C3
// (token minting) and C2 (cache) behind the algorithm spec §4.5 names
// step by step.
type Service struct {
	store     secretstore.Store
	cache     cache.Cache
	validator *credential.Validator
	codec     *token.Codec
	forwarder Forwarder
	emitter   events.Emitter
	locks     *syncutil.KeyedMutex

	storeRetry    resilience.RetryConfig
	storeBreaker  *resilience.Breaker
	cacheBreaker  *resilience.Breaker
	storeBulkhead *resilience.Bulkhead
	cacheBulkhead *resilience.Bulkhead

	sealer *cache.Sealer

	cfg Config
}

// defaultBulkheadCapacity bounds concurrent in-flight vault/cache calls
// per process (spec §4.8: "separate thread pools / concurrency quotas
// for vault calls, backend calls, and cache calls").
const defaultBulkheadCapacity = 64

func NewService(store secretstore.Store, c cache.Cache, validator *credential.Validator, codec *token.Codec, forwarder Forwarder, emitter events.Emitter, cfg Config) *Service {
	cfg.setDefaults()
	return &Service{
		store:         store,
		cache:         c,
		validator:     validator,
		codec:         codec,
		forwarder:     forwarder,
		emitter:       emitter,
		locks:         syncutil.NewKeyedMutex(),
		storeBreaker:  resilience.NewBreaker("vault"),
		cacheBreaker:  resilience.NewBreaker("cache"),
		storeBulkhead: resilience.NewBulkhead(defaultBulkheadCapacity),
		cacheBulkhead: resilience.NewBulkhead(defaultBulkheadCapacity),
		sealer:        cfg.Sealer,
		cfg:           cfg,
	}
}

// Authenticate runs spec §4.5 steps 1-7 (step 8's degraded fallback is
// folded into validateCredential / credential.Validator.ValidateCandidates)
// and returns a live token for
// clientID, minting one if no live cached token exists.
func (s *Service) Authenticate(ctx context.Context, clientID, secret string, sourceAddr string) (*AuthResult, error) {
	if clientID == "" || secret == "" {
		return nil, errors.New(errors.KindValidation, "missing client credentials")
	}

	if result, ok := s.lookupLiveToken(ctx, clientID); ok {
		return result, nil
	}

	unlock := s.locks.Lock(clientID)
	defer unlock()

	// Recheck under the lock: another goroutine may have just minted
	// while we waited (spec §4.5 step 3).
	if result, ok := s.lookupLiveToken(ctx, clientID); ok {
		return result, nil
	}

	record, degraded, err := s.validateCredential(ctx, clientID, secret)
	if err != nil {
		s.emit(ctx, clientID, events.TypeAuthFailure, events.OutcomeFailure, sourceAddr, degraded, err.Error())
		return nil, err
	}

	result, err := s.mintAndCache(ctx, record, degraded)
	if err != nil {
		s.emit(ctx, clientID, events.TypeAuthFailure, events.OutcomeFailure, sourceAddr, degraded, err.Error())
		return nil, err
	}

	s.emit(ctx, clientID, events.TypeAuthSuccess, events.OutcomeSuccess, sourceAddr, degraded, "")
	return result, nil
}

// Refresh re-mints a token for clientID without re-presenting a secret
// (spec §4.5's refresh endpoint): the caller has already proven
// possession of a token this gateway signed, just not one that is
// still within its signature-validity window, so identity is
// established by the caller (see cmd/gateway's refresh handler, which
// checks the grace window before calling this). Refresh still respects
// an in-progress rotation's acceptable-version set and the ACTIVE/
// DEPRECATED status of whichever version it lands on.
func (s *Service) Refresh(ctx context.Context, clientID, sourceAddr string) (*AuthResult, error) {
	paths := s.acceptablePaths(ctx, clientID)

	var record *credential.Record
	err := s.storeBulkhead.Do(ctx, func(ctx context.Context) error {
		return s.storeBreaker.Do(ctx, func(ctx context.Context) error {
			return resilience.Retry(ctx, s.storeRetry, func(ctx context.Context) error {
				for _, path := range paths {
					raw, err := s.store.GetSecret(ctx, path)
					if err != nil {
						continue
					}
					var r credential.Record
					if err := json.Unmarshal(raw, &r); err != nil {
						continue
					}
					if !r.Usable(false) {
						continue
					}
					record = &r
					return nil
				}
				return errors.New(errors.KindAuthentication, "unknown client")
			})
		})
	})
	if err != nil || record == nil {
		s.emit(ctx, clientID, events.TypeAuthFailure, events.OutcomeFailure, sourceAddr, false, "refresh failed")
		return nil, errors.New(errors.KindAuthentication, "unknown client")
	}

	result, err := s.mintAndCache(ctx, record, false)
	if err != nil {
		s.emit(ctx, clientID, events.TypeAuthFailure, events.OutcomeFailure, sourceAddr, false, err.Error())
		return nil, err
	}
	s.emit(ctx, clientID, events.TypeAuthSuccess, events.OutcomeSuccess, sourceAddr, false, "refresh")
	return result, nil
}

// AuthenticateAndForward authenticates clientID/secret then relays req
// to the backend bearing the resulting token (spec §4.5 step 7, used by
// business endpoints such as /api/v1/payments).
func (s *Service) AuthenticateAndForward(ctx context.Context, clientID, secret, sourceAddr string, req *ForwardRequest) (*ForwardResponse, error) {
	result, err := s.Authenticate(ctx, clientID, secret, sourceAddr)
	if err != nil {
		return nil, err
	}
	return s.forwarder.Forward(ctx, result.Token, req)
}

func (s *Service) lookupLiveToken(ctx context.Context, clientID string) (*AuthResult, bool) {
	var jtis []string
	err := s.cacheBulkhead.Do(ctx, func(ctx context.Context) error {
		return s.cacheBreaker.Do(ctx, func(ctx context.Context) error {
			var err error
			jtis, err = s.cache.ScanPrefix(ctx, cache.ClientIndexPrefix(clientID))
			return err
		})
	})
	if err != nil || len(jtis) == 0 {
		return nil, false
	}

	now := time.Now()
	for _, indexKey := range jtis {
		raw, err := s.cache.Get(ctx, indexKey)
		if err != nil {
			continue
		}
		entryKey := cache.TokenKey(string(raw))
		entryRaw, err := s.cache.Get(ctx, entryKey)
		if err != nil {
			continue
		}
		if s.sealer != nil {
			entryRaw, err = s.sealer.Open(entryRaw)
			if err != nil {
				continue
			}
		}
		entry, err := token.UnmarshalCacheEntry(entryRaw)
		if err != nil {
			continue
		}
		if entry.Live(now, s.cfg.ClockSkew) {
			return &AuthResult{Token: entry.Token, ExpiresAt: entry.ExpiresAt, Degraded: entry.Degraded}, true
		}
	}
	return nil, false
}

// validateCredential implements spec §4.5 steps 4-6, 8: determine the
// acceptable version set from the live transition record, try each
// candidate via C4, falling back to cached credential metadata when C1
// is unreachable.
func (s *Service) validateCredential(ctx context.Context, clientID, secret string) (*credential.Record, bool, error) {
	paths := s.acceptablePaths(ctx, clientID)

	var record *credential.Record
	var degraded bool
	err := s.storeBulkhead.Do(ctx, func(ctx context.Context) error {
		return s.storeBreaker.Do(ctx, func(ctx context.Context) error {
			return resilience.Retry(ctx, s.storeRetry, func(ctx context.Context) error {
				var innerErr error
				record, degraded, innerErr = s.validator.ValidateCandidates(ctx, clientID, paths, secret)
				return innerErr
			})
		})
	})
	if err != nil {
		return nil, false, err
	}
	return record, degraded, nil
}

// acceptablePaths reads the live transition record (cached for the
// configured TTL) to decide between the single default credential path
// and the {old, new} pair during DUAL_ACTIVE/OLD_DEPRECATED (spec §4.5
// step 4).
func (s *Service) acceptablePaths(ctx context.Context, clientID string) []string {
	defaultPath := []string{secretstore.CredentialPath(clientID)}

	cacheKey := "transition-cache:" + clientID
	if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
		if tr, err := decodeTransitionRecord(raw); err == nil {
			return acceptablePathsFor(clientID, tr)
		}
	}

	raw, err := s.store.GetSecret(ctx, secretstore.TransitionPath(clientID))
	if err != nil {
		return defaultPath
	}
	tr, err := decodeTransitionRecord(raw)
	if err != nil {
		return defaultPath
	}

	_ = s.cache.SetWithTTL(ctx, cacheKey, raw, s.cfg.TransitionCacheTTL)
	return acceptablePathsFor(clientID, tr)
}

func acceptablePathsFor(clientID string, tr *rotation.TransitionRecord) []string {
	switch tr.State {
	case rotation.StateDualActive, rotation.StateOldDeprecated:
		return []string{
			secretstore.CredentialVersionPath(clientID, tr.OldVersion),
			secretstore.CredentialVersionPath(clientID, tr.NewVersion),
		}
	default:
		return []string{secretstore.CredentialPath(clientID)}
	}
}

func decodeTransitionRecord(raw []byte) (*rotation.TransitionRecord, error) {
	var tr rotation.TransitionRecord
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "decode transition record", err)
	}
	return &tr, nil
}

func (s *Service) mintAndCache(ctx context.Context, record *credential.Record, degraded bool) (*AuthResult, error) {
	signed, claims, err := s.codec.Mint(ctx, record.ClientID, record.Permissions, degraded)
	if err != nil {
		return nil, err
	}

	entry := &token.CacheEntry{
		ClientID:  record.ClientID,
		JTI:       claims.ID,
		Token:     signed,
		ExpiresAt: claims.ExpiresAt,
		Status:    token.CacheEntryStatusLive,
		Degraded:  degraded,
	}
	raw, err := token.MarshalCacheEntry(entry)
	if err != nil {
		return nil, err
	}
	if s.sealer != nil {
		raw, err = s.sealer.Seal(raw)
		if err != nil {
			return nil, err
		}
	}

	ttl := time.Until(claims.ExpiresAt)
	err = s.cacheBulkhead.Do(ctx, func(ctx context.Context) error {
		return s.cacheBreaker.Do(ctx, func(ctx context.Context) error {
			if err := s.cache.SetWithTTL(ctx, cache.TokenKey(claims.ID), raw, ttl); err != nil {
				return err
			}
			return s.cache.SetWithTTL(ctx, cache.ClientIndexKey(record.ClientID, claims.ID), []byte(claims.ID), ttl)
		})
	})
	if err != nil {
		// The token itself is valid even if caching it failed; a cache
		// outage must not fail an otherwise-successful authentication.
		return &AuthResult{Token: signed, ExpiresAt: claims.ExpiresAt, Degraded: degraded}, nil
	}

	return &AuthResult{Token: signed, ExpiresAt: claims.ExpiresAt, Degraded: degraded}, nil
}

func (s *Service) emit(ctx context.Context, clientID string, eventType events.Type, outcome events.Outcome, sourceAddr string, degraded bool, detail string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, events.Event{
		Timestamp:     time.Now(),
		ClientID:      clientID,
		EventType:     eventType,
		Outcome:       outcome,
		SourceAddr:    sourceAddr,
		CorrelationID: correlation.FromContext(ctx),
		Degraded:      degraded,
		Detail:        detail,
	})
}

// Package token implements the signed-token codec (spec §4.3, C3):
// minting tokens for validated credentials and verifying/renewing them
// on the backend side. Adapted from pkg/gourdiantoken-master's
// JWTMaker, collapsed to the single HS256 claim set this system needs
// and generalized to a KeyRing that supports live key rotation.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/meridianpay/authgateway/internal/errors"
)

// Codec mints and verifies Claims-carrying JWTs against a KeyRing.
type Codec struct {
	keys *KeyRing
	cfg  Config
}

func NewCodec(keys *KeyRing, cfg Config) *Codec {
	cfg.setDefaults()
	return &Codec{keys: keys, cfg: cfg}
}

// Mint signs a new token for clientID carrying permissions. degraded
// marks tokens minted while the credential validator fell back to
// cached state (spec §4.5).
func (c *Codec) Mint(ctx context.Context, clientID string, permissions []string, degraded bool) (string, *Claims, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, errors.Wrap(errors.KindInternal, "context canceled", err)
	}

	jti, err := uuid.NewRandom()
	if err != nil {
		return "", nil, errors.Wrap(errors.KindInternal, "generate token id", err)
	}

	now := time.Now().UTC()
	claims := &Claims{
		ID:          jti.String(),
		Subject:     clientID,
		Issuer:      c.cfg.Issuer,
		Audience:    c.cfg.Audience,
		Permissions: permissions,
		IssuedAt:    now,
		ExpiresAt:   now.Add(c.cfg.TTL),
		NotBefore:   now,
		Degraded:    degraded,
	}

	keyID, key := c.keys.SigningKey()

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, toMapClaims(claims))
	jwtToken.Header["kid"] = keyID

	signed, err := jwtToken.SignedString(key)
	if err != nil {
		return "", nil, errors.Wrap(errors.KindInternal, "sign token", err)
	}
	return signed, claims, nil
}

// Verify parses and validates a token string: signature (against
// whichever key in the KeyRing matches the token's kid header),
// expiry, not-before and issuer/audience. Returns a typed
// KindAuthentication error on any failure, never leaking why to the
// caller beyond that classification (spec §7).
func (c *Codec) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "context canceled", err)
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := c.keys.VerificationKey(kid)
		if !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(c.cfg.ClockSkew))
	if err != nil || !parsed.Valid {
		return nil, errors.Wrap(errors.KindAuthentication, "invalid token", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New(errors.KindAuthentication, "invalid token claims")
	}

	claims, err := fromMapClaims(mapClaims)
	if err != nil {
		return nil, errors.Wrap(errors.KindAuthentication, "invalid token claims", err)
	}

	if c.cfg.Issuer != "" && claims.Issuer != c.cfg.Issuer {
		return nil, errors.New(errors.KindAuthentication, "unexpected issuer")
	}

	if len(c.cfg.Audience) > 0 && !audienceMatches(c.cfg.Audience, claims.Audience) {
		return nil, errors.New(errors.KindAuthentication, "unexpected audience")
	}

	return claims, nil
}

// audienceMatches reports whether claims carries at least one of the
// audiences this codec expects (spec §4.3: audience is part of token
// verification, same as issuer).
func audienceMatches(expected, got []string) bool {
	for _, e := range expected {
		for _, g := range got {
			if e == g {
				return true
			}
		}
	}
	return false
}

// RenewalDue reports whether claims are close enough to expiry that a
// backend should request renewal (spec §4.6).
func (c *Codec) RenewalDue(claims *Claims) bool {
	return time.Until(claims.ExpiresAt) <= c.cfg.RenewalWindow
}

// WithinRenewalGrace reports whether claims expired recently enough to
// still be eligible for renewal (spec §4.5's refresh endpoint, spec
// §4.6 step 3: "elapsed expiry is below a configured grace window").
func (c *Codec) WithinRenewalGrace(claims *Claims) bool {
	return time.Since(claims.ExpiresAt) <= c.cfg.RenewalWindow
}

// VerifyIgnoringExpiry checks signature, issuer and key validity exactly
// like Verify but skips the expiry/not-before checks, so the caller can
// recover the subject of an expired token to decide whether it still
// falls inside the renewal grace window (spec §4.5's refresh endpoint,
// spec §4.6 step 3).
func (c *Codec) VerifyIgnoringExpiry(ctx context.Context, tokenString string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "context canceled", err)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	parsed, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := c.keys.VerificationKey(kid)
		if !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}
		return key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.Wrap(errors.KindAuthentication, "invalid token", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New(errors.KindAuthentication, "invalid token claims")
	}

	claims, err := fromMapClaims(mapClaims)
	if err != nil {
		return nil, errors.Wrap(errors.KindAuthentication, "invalid token claims", err)
	}
	if c.cfg.Issuer != "" && claims.Issuer != c.cfg.Issuer {
		return nil, errors.New(errors.KindAuthentication, "unexpected issuer")
	}
	if len(c.cfg.Audience) > 0 && !audienceMatches(c.cfg.Audience, claims.Audience) {
		return nil, errors.New(errors.KindAuthentication, "unexpected audience")
	}
	return claims, nil
}

// toMapClaims mirrors gourdiantoken's approach of building jwt.MapClaims
// by hand rather than relying on struct-tag marshaling, so every field's
// wire representation (unix timestamps, string slices) is explicit.
func toMapClaims(c *Claims) jwt.MapClaims {
	mc := jwt.MapClaims{
		"jti":         c.ID,
		"sub":         c.Subject,
		"iss":         c.Issuer,
		"aud":         c.Audience,
		"permissions": c.Permissions,
		"iat":         c.IssuedAt.Unix(),
		"exp":         c.ExpiresAt.Unix(),
		"nbf":         c.NotBefore.Unix(),
	}
	if c.Degraded {
		mc["dgd"] = true
	}
	return mc
}

func fromMapClaims(mc jwt.MapClaims) (*Claims, error) {
	c := &Claims{}

	id, _ := mc["jti"].(string)
	if id == "" {
		return nil, fmt.Errorf("missing jti claim")
	}
	c.ID = id

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("missing sub claim")
	}
	c.Subject = sub

	c.Issuer, _ = mc["iss"].(string)
	c.Audience = toStringSlice(mc["aud"])
	c.Permissions = toStringSlice(mc["permissions"])

	iat, err := toUnixTime(mc["iat"])
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	c.IssuedAt = iat

	exp, err := toUnixTime(mc["exp"])
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	c.ExpiresAt = exp

	nbf, err := toUnixTime(mc["nbf"])
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	c.NotBefore = nbf

	if dgd, ok := mc["dgd"].(bool); ok {
		c.Degraded = dgd
	}

	return c, nil
}

func toStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toUnixTime(v interface{}) (time.Time, error) {
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0).UTC(), nil
	case int64:
		return time.Unix(n, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("not a numeric timestamp: %v", v)
	}
}

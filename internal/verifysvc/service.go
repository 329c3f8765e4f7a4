// Package verifysvc implements the backend's token verification service
// (spec §4.6, C6): parse, verify, optionally renew, then check
// permissions before handing off to business processing.
package verifysvc

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridianpay/authgateway/internal/errors"
	"github.com/meridianpay/authgateway/internal/events"
	"github.com/meridianpay/authgateway/internal/token"
)

// Config mirrors the backend-relevant slice of spec §6's configuration
// surface.
type Config struct {
	RenewalEnabled bool
}

// Renewer calls back to the gateway's renewal endpoint for an expired
// token still inside its grace window (spec §4.6 step 3; spec §9
// pins the gateway as the sole minter, so the backend never mints a
// renewed token itself, only requests one).
type Renewer interface {
	Renew(ctx context.Context, expiredToken string) (newToken string, err error)
}

// Result is the outcome of VerifyAndAuthorize, shaped after the
// backend-facing wire contract's /internal/v1/tokens/validate response
// (spec §6): isValid, isExpired, isForbidden, isRenewed, renewedTokenString.
type Result struct {
	Valid              bool
	Expired            bool
	Forbidden          bool
	Renewed            bool
	RenewedTokenString string
	Claims             *token.Claims
}

// Service verifies bearer tokens and checks permissions (spec §4.6).
type Service struct {
	codec   *token.Codec
	renewer Renewer
	emitter events.Emitter
	cfg     Config
}

func NewService(codec *token.Codec, renewer Renewer, emitter events.Emitter, cfg Config) *Service {
	return &Service{codec: codec, renewer: renewer, emitter: emitter, cfg: cfg}
}

// VerifyAndAuthorize implements spec §4.6 steps 1-4: extraction is the
// caller's job (it supplies tokenString already stripped of the Bearer
// prefix); this checks signature/expiry, attempts renewal if eligible,
// then enforces requiredPermission.
func (s *Service) VerifyAndAuthorize(ctx context.Context, tokenString, requiredPermission, sourceAddr string) (*Result, error) {
	if tokenString == "" {
		return nil, errors.New(errors.KindValidation, "missing bearer token")
	}

	claims, err := s.codec.Verify(ctx, tokenString)
	if err != nil {
		if isExpiry(err) && s.cfg.RenewalEnabled && s.renewer != nil {
			return s.tryRenew(ctx, tokenString, requiredPermission, sourceAddr)
		}
		s.emit(ctx, "", events.TypeTokenRejected, sourceAddr, err.Error())
		return nil, errors.Wrap(errors.KindAuthentication, "invalid token", err)
	}

	if requiredPermission != "" && !claims.HasPermission(requiredPermission) {
		s.emit(ctx, claims.Subject, events.TypeTokenRejected, sourceAddr, "missing permission")
		return &Result{Valid: true, Forbidden: true, Claims: claims}, errors.New(errors.KindAuthorization, "missing required permission")
	}

	s.emit(ctx, claims.Subject, events.TypeTokenVerified, sourceAddr, "")
	return &Result{Valid: true, Claims: claims}, nil
}

func (s *Service) tryRenew(ctx context.Context, expiredToken, requiredPermission, sourceAddr string) (*Result, error) {
	newToken, err := s.renewer.Renew(ctx, expiredToken)
	if err != nil {
		s.emit(ctx, "", events.TypeTokenRejected, sourceAddr, "renewal failed")
		return &Result{Expired: true}, errors.Wrap(errors.KindAuthentication, "token expired, renewal failed", err)
	}

	claims, err := s.codec.Verify(ctx, newToken)
	if err != nil {
		return &Result{Expired: true}, errors.Wrap(errors.KindAuthentication, "invalid renewed token", err)
	}

	if requiredPermission != "" && !claims.HasPermission(requiredPermission) {
		s.emit(ctx, claims.Subject, events.TypeTokenRejected, sourceAddr, "missing permission after renewal")
		return &Result{Valid: true, Expired: true, Renewed: true, RenewedTokenString: newToken, Forbidden: true, Claims: claims},
			errors.New(errors.KindAuthorization, "missing required permission")
	}

	s.emit(ctx, claims.Subject, events.TypeTokenRenewed, sourceAddr, "")
	return &Result{Valid: true, Expired: true, Renewed: true, RenewedTokenString: newToken, Claims: claims}, nil
}

func (s *Service) emit(ctx context.Context, clientID string, eventType events.Type, sourceAddr, detail string) {
	if s.emitter == nil {
		return
	}
	outcome := events.OutcomeSuccess
	if eventType == events.TypeTokenRejected {
		outcome = events.OutcomeFailure
	}
	s.emitter.Emit(ctx, events.Event{
		Timestamp:  time.Now(),
		ClientID:   clientID,
		EventType:  eventType,
		Outcome:    outcome,
		SourceAddr: sourceAddr,
		Detail:     detail,
	})
}

// isExpiry unwraps err looking for jwt's own expiry sentinel. Codec.Verify
// classifies every parse failure as KindAuthentication, so distinguishing
// "expired, maybe renewable" from "outright invalid" means looking past
// that classification at the wrapped jwt-library cause.
func isExpiry(err error) bool {
	return stderrors.Is(err, jwt.ErrTokenExpired)
}

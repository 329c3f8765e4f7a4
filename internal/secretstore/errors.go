package secretstore

import (
	stderrors "errors"

	"github.com/meridianpay/authgateway/internal/errors"
)

// ErrNotFound, ErrConnection and ErrAuthentication classify the three
// failure modes spec §4.1 requires callers to distinguish:
//   - connection failures are recoverable and retried with backoff
//   - not-found is recoverable (caller falls through to another
//     candidate version, or to degraded mode)
//   - authentication failures are fatal-for-this-request and never
//     retried automatically
var (
	ErrNotFound       = errors.New(errors.KindValidation, "secret not found")
	ErrConnection     = errors.New(errors.KindDependencyUnavail, "secret store unreachable")
	ErrAuthentication = errors.New(errors.KindInternal, "secret store authentication failed")
)

// IsNotFound reports whether err (or anything it wraps) is ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsConnectionFailure reports whether err (or anything it wraps) is
// ErrConnection — the only class eligible for automatic retry.
func IsConnectionFailure(err error) bool {
	return stderrors.Is(err, ErrConnection)
}

// IsAuthenticationFailure reports whether err (or anything it wraps) is
// ErrAuthentication — fatal-for-this-request, never retried.
func IsAuthenticationFailure(err error) bool {
	return stderrors.Is(err, ErrAuthentication)
}

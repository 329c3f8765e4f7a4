package cache

import (
	stderrors "errors"

	"github.com/meridianpay/authgateway/internal/errors"
)

// ErrMiss and ErrConnection classify the two failure modes a Cache
// caller must distinguish: a miss falls through to the next authority
// (secret store, or re-mint); a connection failure is treated by the
// authentication service like a miss, and a freshly minted token is
// still returned without being cached.
var (
	ErrMiss       = errors.New(errors.KindValidation, "cache miss")
	ErrConnection = errors.New(errors.KindDependencyUnavail, "cache unreachable")
)

// IsMiss reports whether err (or anything it wraps) is ErrMiss.
func IsMiss(err error) bool {
	return stderrors.Is(err, ErrMiss)
}

// IsConnectionFailure reports whether err (or anything it wraps) is
// ErrConnection.
func IsConnectionFailure(err error) bool {
	return stderrors.Is(err, ErrConnection)
}

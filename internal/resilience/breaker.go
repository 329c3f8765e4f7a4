package resilience

import (
	"context"

	gobreaker "github.com/zeromicro/go-zero/core/breaker"

	"github.com/meridianpay/authgateway/internal/errors"
)

// Breaker wraps a go-zero circuit breaker scoped to one dependency
// (e.g. "vault", "cache"), tripping on the dependency-unavailable/
// internal error kinds resilience.Retry already distinguishes as
// retryable, and short-circuiting calls while open so a degraded
// dependency doesn't pile up latency on every request (spec §4.5,
// §4.8).
type Breaker struct {
	b gobreaker.Breaker
}

// NewBreaker builds a named Breaker. name should identify the guarded
// dependency for go-zero's internal breaker stats/logging.
func NewBreaker(name string) *Breaker {
	return &Breaker{b: gobreaker.NewBreaker(gobreaker.WithName(name))}
}

// Do runs op through the breaker. When the breaker is open, op is not
// invoked and a KindDependencyUnavail error is returned immediately.
func (b *Breaker) Do(ctx context.Context, op func(ctx context.Context) error) error {
	err := b.b.DoWithAcceptable(func() error {
		return op(ctx)
	}, func(err error) bool {
		return err == nil || !errors.Retryable(err)
	})
	if err != nil && !errors.Is(err, errors.KindDependencyUnavail) && !errors.Is(err, errors.KindInternal) {
		if isBreakerOpen(err) {
			return errors.Wrap(errors.KindDependencyUnavail, "circuit open", err)
		}
	}
	return err
}

func isBreakerOpen(err error) bool {
	return err == gobreaker.ErrServiceUnavailable
}

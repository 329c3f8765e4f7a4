// Package resilience provides the retry, circuit-breaker and bulkhead
// primitives C5/C6 wrap every secret-store and cache call in (spec
// §4.8, C8). The teacher has no dedicated resilience package of its
// own — its `third_party` adapters retry nothing and fail fast — so
// this package is new, built from go-zero's own concurrency toolkit
// (already a direct dependency) plus cenkalti/backoff for the
// retry/backoff curve, rather than hand-rolling either.
package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meridianpay/authgateway/internal/errors"
)

// RetryConfig bounds the exponential backoff+jitter curve retries run
// on.
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

func (c *RetryConfig) setDefaults() {
	if c.InitialInterval == 0 {
		c.InitialInterval = 50 * time.Millisecond
	}
	if c.MaxInterval == 0 {
		c.MaxInterval = 2 * time.Second
	}
	if c.MaxElapsedTime == 0 {
		c.MaxElapsedTime = 5 * time.Second
	}
}

// Retry runs op, retrying on errors.Retryable failures with exponential
// backoff and jitter until it succeeds, hits a non-retryable error, or
// exhausts cfg.MaxElapsedTime.
func Retry(ctx context.Context, cfg RetryConfig, op func(ctx context.Context) error) error {
	cfg.setDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.MaxElapsedTime = cfg.MaxElapsedTime

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !errors.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

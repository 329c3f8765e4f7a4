package resilience

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/authgateway/internal/errors"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryConfig{}, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New(errors.KindDependencyUnavail, "transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_StopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryConfig{}, func(ctx context.Context) error {
		attempts++
		return errors.New(errors.KindAuthentication, "bad credential")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestBulkhead_RejectsBeyondCapacity(t *testing.T) {
	b := NewBulkhead(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = b.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindDependencyUnavail))

	close(release)
}

func TestBreaker_PassesThroughSuccessfulCalls(t *testing.T) {
	b := NewBreaker("test-dependency")
	err := b.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

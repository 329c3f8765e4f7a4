package rotation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/errors"
)

// leaseTTL bounds how long a driver tick may hold a client's rotation
// lease before another instance is allowed to reclaim it, guarding
// against a crashed holder wedging a client's rotation forever.
const leaseTTL = 30 * time.Second

// withLease acquires the distributed lease on rotation-lock/{clientID}
// for the duration of fn, releasing it on every exit path (spec §4.7,
// §9 "scoped resource acquisition"). Returns a KindRotationConflict
// error if the lease is already held.
func withLease(ctx context.Context, c cache.Cache, clientID string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	key := cache.RotationLockKey(clientID)

	acquired, err := c.AcquireLease(ctx, key, token, leaseTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return errors.New(errors.KindRotationConflict, "rotation already in progress for this client")
	}
	defer func() {
		_ = c.ReleaseLease(context.Background(), key, token)
	}()

	return fn(ctx)
}

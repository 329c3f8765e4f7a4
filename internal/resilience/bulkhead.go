package resilience

import (
	"context"

	"github.com/zeromicro/go-zero/core/syncx"

	"github.com/meridianpay/authgateway/internal/errors"
)

// Bulkhead caps the number of concurrent in-flight calls to a
// dependency, so one slow downstream (a stalled Vault read, a wedged
// Redis connection) can't exhaust the whole service's goroutines.
// Built on go-zero's core/syncx.Limit, the same admission-control
// primitive go-zero's own rest/zrpc servers use for load shedding.
type Bulkhead struct {
	limit *syncx.Limit
}

// NewBulkhead returns a Bulkhead admitting at most max concurrent
// callers.
func NewBulkhead(max int) *Bulkhead {
	return &Bulkhead{limit: syncx.NewLimit(max)}
}

// Do runs op if a slot is available, otherwise returns a
// KindDependencyUnavail error without invoking op.
func (b *Bulkhead) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if !b.limit.TryBorrow() {
		return errors.New(errors.KindDependencyUnavail, "bulkhead capacity exceeded")
	}
	defer func() {
		_ = b.limit.Return()
	}()
	return op(ctx)
}

package lock

import (
	"context"

	"go.uber.org/zap"
)

// Keyed is implemented by requests that name the account they mutate.
type Keyed interface {
	LockKey() string
}

// Operation is any request/response call that can run under a lease.
type Operation[Req Keyed, Res any] func(ctx context.Context, req Req) (Res, error)

// Acquirer is the part of Coordinator that Guard needs.
type Acquirer interface {
	Acquire(ctx context.Context, key string) (*Lease, error)
	Release(ctx context.Context, lease *Lease) error
}

var _ Acquirer = (*Coordinator)(nil)

// Guard wraps op so it runs only while the lease on req.LockKey() is held.
//
// When acquisition fails op is not called and the acquisition error is
// returned. Otherwise the lease is released after op returns, errors or
// panics; a release failure is logged and never replaces op's own result.
// Once the lease is held, op runs to completion even if ctx is cancelled.
func Guard[Req Keyed, Res any](locks Acquirer, logger *zap.Logger, op Operation[Req, Res]) Operation[Req, Res] {
	return func(ctx context.Context, req Req) (Res, error) {
		key := req.LockKey()

		lease, err := locks.Acquire(ctx, key)
		if err != nil {
			var zero Res
			return zero, err
		}

		runCtx := context.WithoutCancel(ctx)
		defer func() {
			if err := locks.Release(runCtx, lease); err != nil {
				logger.Warn("failed to release account lease", zap.String("lock_key", key), zap.Error(err))
			}
		}()

		return op(runCtx, req)
	}
}

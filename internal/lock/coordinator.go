// Package lock serializes balance-mutating operations per account number.
//
// A Coordinator obtains time-bounded leases from a shared Store, retrying at a
// fixed interval up to a maximum wait. Guard binds any operation whose request
// exposes a LockKey to a Coordinator so the lease is held for exactly the
// duration of the operation.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jinyngg/account/shared/apperror"
	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig is returned by NewCoordinator for non-positive durations.
	ErrInvalidConfig = errors.New("lock config: durations must be positive")
)

// Config bounds how leases are obtained.
type Config struct {
	// LeaseTTL is how long the store keeps a lease if its holder never releases it.
	LeaseTTL time.Duration
	// MaxWait is how long Acquire keeps retrying before giving up.
	MaxWait time.Duration
	// RetryInterval is the pause between attempts.
	RetryInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		LeaseTTL:      5 * time.Second,
		MaxWait:       time.Second,
		RetryInterval: 50 * time.Millisecond,
	}
}

func (c Config) validate() error {
	if c.LeaseTTL <= 0 || c.MaxWait <= 0 || c.RetryInterval <= 0 {
		return fmt.Errorf("%w: ttl=%s maxWait=%s retry=%s", ErrInvalidConfig, c.LeaseTTL, c.MaxWait, c.RetryInterval)
	}
	return nil
}

// Lease is a held lock on one account number.
type Lease struct {
	Key        string
	AcquiredAt time.Time
	ExpiresAt  time.Time

	handle   Handle
	released atomic.Bool
}

type Coordinator struct {
	store  Store
	cfg    Config
	logger *zap.Logger
}

func NewCoordinator(store Store, cfg Config, logger *zap.Logger) (*Coordinator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Coordinator{store: store, cfg: cfg, logger: logger}, nil
}

// Acquire blocks until the lease on key is obtained, MaxWait elapses or ctx is
// done. The latter two fail with apperror.LockUnavailable.
func (c *Coordinator) Acquire(ctx context.Context, key string) (*Lease, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperror.Newf(apperror.InvalidRequest, "lock key cannot be empty")
	}

	start := time.Now()
	deadline := start.Add(c.cfg.MaxWait)
	var lastErr error

	for attempt := 1; ; attempt++ {
		handle, ok, err := c.store.TryAcquire(ctx, key, c.cfg.LeaseTTL)
		switch {
		case err != nil:
			lastErr = err
			c.logger.Warn("lease attempt failed", zap.String("lock_key", key), zap.Int("attempt", attempt), zap.Error(err))
		case ok:
			now := time.Now()
			acquireTotal.WithLabelValues(outcomeAcquired).Inc()
			acquireWait.Observe(now.Sub(start).Seconds())
			c.logger.Debug("lease acquired", zap.String("lock_key", key), zap.Int("attempt", attempt))
			return &Lease{Key: key, AcquiredAt: now, ExpiresAt: now.Add(c.cfg.LeaseTTL), handle: handle}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			acquireTotal.WithLabelValues(outcomeTimeout).Inc()
			c.logger.Info("lease wait exceeded", zap.String("lock_key", key), zap.Duration("max_wait", c.cfg.MaxWait), zap.Int("attempts", attempt))
			if lastErr != nil {
				return nil, apperror.Wrap(apperror.LockUnavailable, lastErr)
			}
			return nil, apperror.New(apperror.LockUnavailable)
		}

		timer := time.NewTimer(min(c.cfg.RetryInterval, remaining))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			acquireTotal.WithLabelValues(outcomeCancelled).Inc()
			return nil, apperror.Wrap(apperror.LockUnavailable, ctx.Err())
		}
	}
}

// Release gives the lease back. It is idempotent: a nil lease, a lease that
// was already released, or one the store already expired, all return nil.
func (c *Coordinator) Release(ctx context.Context, lease *Lease) error {
	if lease == nil || lease.handle == nil || !lease.released.CompareAndSwap(false, true) {
		return nil
	}

	heldDuration.Observe(time.Since(lease.AcquiredAt).Seconds())
	if err := lease.handle.Release(ctx); err != nil {
		return fmt.Errorf("release lease %q: %w", lease.Key, err)
	}

	c.logger.Debug("lease released", zap.String("lock_key", lease.Key))
	return nil
}

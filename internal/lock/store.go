package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// Store is the shared lease backend. TryAcquire makes a single attempt and
// reports false, without error, when another holder owns key.
type Store interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (Handle, bool, error)
}

// Handle releases one acquired lease. Releasing a lease that already expired
// or was taken over after expiry must return nil.
type Handle interface {
	Release(ctx context.Context) error
}

const redisKeyPrefix = "lock:account:"

// RedisStore keeps leases in Redis through redsync. Each lease stores a random
// holder token, so only the acquirer can delete it, and Redis expires it after
// ttl even if the holder never comes back.
type RedisStore struct {
	redsync *redsync.Redsync
}

func NewRedisStore(client goredislib.UniversalClient) *RedisStore {
	return &RedisStore{redsync: redsync.New(goredis.NewPool(client))}
}

func (s *RedisStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Handle, bool, error) {
	mutex := s.redsync.NewMutex(
		redisKeyPrefix+key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to attempt lease for %q: %w", key, err)
	}

	return &redisHandle{mutex: mutex}, true, nil
}

type redisHandle struct {
	mutex *redsync.Mutex
}

func (h *redisHandle) Release(ctx context.Context) error {
	// A false result means the key no longer carries our token, i.e. it expired.
	if _, err := h.mutex.UnlockContext(ctx); err != nil && !isNotHeld(err) {
		return fmt.Errorf("failed to release lease %q: %w", h.mutex.Name(), err)
	}
	return nil
}

// isContention reports whether a single-try lock failed because another
// holder owns the key, as opposed to a transport failure.
func isContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}

func isNotHeld(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "expired") || strings.Contains(msg, "lock already taken")
}

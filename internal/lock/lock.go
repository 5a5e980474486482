// Package lock serializes booking finalization across service instances.
package lock

import (
	"context"
	"errors"
	"time"

	"vaccinebooking/internal/pkg/apperror"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Locker acquires a named lock. The returned release func is always non-nil.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, log: log}
}

// Acquire waits briefly for the lock. When another holder keeps it the call
// fails with a Conflict; when redis itself is unreachable the caller proceeds
// unlocked and relies on the conditional update in the store.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	}
	lk, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return func() {}, apperror.Conflict("finalization of " + key + " is already in progress")
	}
	if err != nil {
		l.log.WithError(err).WithField("key", key).Warn("error obtaining redis lock; proceeding without redis lock")
		return func() {}, nil
	}

	return func() {
		// Release with a fresh context so a cancelled request still frees the lock.
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.WithError(err).WithField("key", key).Warn("failed to release redis lock")
		}
	}, nil
}

type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

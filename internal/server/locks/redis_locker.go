// Package locks provides the per-owner distributed lock that collapses
// concurrent token refreshes, built on the Redlock implementation of
// go-redsync/redsync/v4.
package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
)

const (
	DefaultTTL   = 10 * time.Second
	defaultTries = 32
	keyPrefix    = "soulbeats:refresh:"
)

var ErrNotAcquired = errors.New("refresh lock not acquired")

// RedisLocker hands out one mutex per owner. A holder that dies releases
// implicitly when the TTL runs out.
type RedisLocker struct {
	client *redis.Client
	rs     *redsync.Redsync
	ttl    time.Duration
	tries  int
}

// NewRedisLocker builds a locker over client. Zero ttl or tries fall back
// to the defaults.
func NewRedisLocker(client *redis.Client, ttl time.Duration, tries int) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("locks: redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tries <= 0 {
		tries = defaultTries
	}
	return &RedisLocker{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		tries:  tries,
	}, nil
}

// Dial connects to addr and verifies it answers.
func Dial(ctx context.Context, addr string, ttl time.Duration) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisLocker(client, ttl, 0)
}

// Lock blocks until the owner's refresh mutex is held, the tries run out or
// ctx is done. The returned release func must be called once.
func (l *RedisLocker) Lock(ctx context.Context, ownerID string) (func() error, error) {
	m := l.rs.NewMutex(keyPrefix+ownerID,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(l.tries),
	)

	if err := m.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: owner %s: %w", ErrNotAcquired, ownerID, err)
	}

	release := func() error {
		// the request context may be gone by now
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
		defer cancel()
		if ok, err := m.UnlockContext(ctx); err != nil || !ok {
			return fmt.Errorf("release refresh lock of %s: ok=%v: %w", ownerID, ok, err)
		}
		return nil
	}
	return release, nil
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}

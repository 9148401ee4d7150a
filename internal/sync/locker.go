package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes sync runs per connection so concurrent callers
// cannot race the check-then-write upsert sequence.
type Locker interface {
	// Acquire returns ok=false when another sync holds the lock.
	// The returned release function is safe to call exactly once.
	Acquire(ctx context.Context, connectionID int64) (release func(), ok bool, err error)
}

// RedisLocker implements Locker with SET NX and a TTL so a crashed
// worker cannot hold a connection hostage.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, connectionID int64) (func(), bool, error) {
	key := fmt.Sprintf("sync:lock:%d", connectionID)

	ok, err := l.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		_ = l.client.Del(context.Background(), key).Err()
	}
	return release, true, nil
}

// MemoryLocker implements Locker for single-process deployments and
// tests.
type MemoryLocker struct {
	mu   gosync.Mutex
	held map[int64]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[int64]bool)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, connectionID int64) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[connectionID] {
		return nil, false, nil
	}
	l.held[connectionID] = true

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, connectionID)
	}
	return release, true, nil
}

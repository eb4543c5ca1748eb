// Package hold coordinates short-lived exclusive holds on lesson slots, so a
// slot shown to one student cannot be committed twice while checkout is in
// flight. Holds are advisory; the booking commit still re-validates.
package hold

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "hold:slot:"

// Store acquires and releases slot holds. A TTL bounds every hold so abandoned
// checkouts free the slot on their own.
type Store interface {
	TryHold(ctx context.Context, driverID uuid.UUID, slot time.Time, studentID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, driverID uuid.UUID, slot time.Time) error
}

// RedisStore implements Store with SET NX EX semantics.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisStore constructs the Redis-backed store.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: prefix}
}

// TryHold attempts to acquire the hold, reporting false when another student
// already holds the slot.
func (r *RedisStore) TryHold(ctx context.Context, driverID uuid.UUID, slot time.Time, studentID uuid.UUID, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	ok, err := r.client.SetNX(ctx, r.key(driverID, slot), studentID.String(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release drops the hold regardless of owner.
func (r *RedisStore) Release(ctx context.Context, driverID uuid.UUID, slot time.Time) error {
	if err := r.client.Del(ctx, r.key(driverID, slot)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisStore) key(driverID uuid.UUID, slot time.Time) string {
	return r.keyPrefix + driverID.String() + ":" + slot.UTC().Format(time.RFC3339)
}

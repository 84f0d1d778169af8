package appointment

import (
	"context"
	"time"

	"dokta/utils"

	"github.com/go-redis/redis/v8"
)

const pendingMarker = "pending"

// IdempotencyStore serializes creations sharing one idempotency key.
type IdempotencyStore interface {
	// Claim reserves key. When another request already holds it, claimed is
	// false and appointmentID is set once that request has finished.
	Claim(ctx context.Context, key string) (claimed bool, appointmentID string, err error)
	// Bind records the appointment created under key.
	Bind(ctx context.Context, key, appointmentID string) error
	// Release drops a claim whose creation failed so the client can retry.
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore keeps claims in Redis with SETNX.
type RedisIdempotencyStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{Client: client, TTL: utils.IdempotencyTTL}
}

func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string) (bool, string, error) {
	k := utils.IdempotencyPrefix + key
	ok, err := s.Client.SetNX(ctx, k, pendingMarker, s.TTL).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, "", nil
	}
	val, err := s.Client.Get(ctx, k).Result()
	if err == redis.Nil {
		// Expired between the two calls.
		return s.Claim(ctx, key)
	}
	if err != nil {
		return false, "", err
	}
	if val == pendingMarker {
		return false, "", nil
	}
	return false, val, nil
}

func (s *RedisIdempotencyStore) Bind(ctx context.Context, key, appointmentID string) error {
	return s.Client.Set(ctx, utils.IdempotencyPrefix+key, appointmentID, s.TTL).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.Client.Del(ctx, utils.IdempotencyPrefix+key).Err()
}

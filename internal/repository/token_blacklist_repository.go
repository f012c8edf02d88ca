package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// blacklistKeyPrefix namespaces revocation entries so maintenance scans never
// touch other tenants of the store.
const blacklistKeyPrefix = "blacklist:token:"

const scanBatchSize = 100

// TokenBlacklistRepository is the shared revocation store. Entries self-expire
// after their TTL; an entry's presence means the token must be rejected.
type TokenBlacklistRepository interface {
	// Put records a token with the given TTL. A non-positive TTL is a no-op
	// since the entry could never outlive an already expired token.
	Put(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
	Remove(ctx context.Context, token string) error
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

type redisTokenBlacklistRepository struct {
	client *redis.Client
}

// NewTokenBlacklistRepository returns a Redis-backed implementation.
func NewTokenBlacklistRepository(client *redis.Client) TokenBlacklistRepository {
	return &redisTokenBlacklistRepository{client: client}
}

func (r *redisTokenBlacklistRepository) Put(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, blacklistKeyPrefix+token, "blacklisted", ttl).Err()
}

func (r *redisTokenBlacklistRepository) Contains(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisTokenBlacklistRepository) Remove(ctx context.Context, token string) error {
	return r.client.Del(ctx, blacklistKeyPrefix+token).Err()
}

// Count walks the keyspace with SCAN rather than KEYS so large blacklists do
// not block the store.
func (r *redisTokenBlacklistRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	iter := r.client.Scan(ctx, 0, blacklistKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *redisTokenBlacklistRepository) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, blacklistKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

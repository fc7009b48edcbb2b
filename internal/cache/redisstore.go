// internal/cache/redisstore.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"creative-pipeline/internal/models"
)

const redisKeyPrefix = "pipeline:cache:"

// RedisStore is a key-value durable cache tier. Entries are stored as JSON
// under a TTL, so Redis itself enforces expiry for rows never read again.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed durable cache tier.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(fingerprint string) string {
	return redisKeyPrefix + fingerprint
}

func (s *RedisStore) Get(ctx context.Context, fingerprint string) (*models.CacheEntry, error) {
	raw, err := s.client.Get(ctx, redisKey(fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", fingerprint, err)
	}
	return &entry, nil
}

func (s *RedisStore) Put(ctx context.Context, entry *models.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, redisKey(entry.Fingerprint), raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, fingerprint string) error {
	return s.client.Del(ctx, redisKey(fingerprint)).Err()
}

func (s *RedisStore) RecordHit(ctx context.Context, entry *models.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	// Keep the original expiry; hit accounting must not extend the TTL.
	return s.client.Set(ctx, redisKey(entry.Fingerprint), raw, redis.KeepTTL).Err()
}

// PurgeExpired is a no-op for Redis, which expires keys natively.
func (s *RedisStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

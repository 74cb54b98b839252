package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "linkbot:session:"

// RedisStore keeps selections as plain string keys with an expiry.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("repository: redis client must not be nil")
	}
	return &RedisStore{client: client}, nil
}

// NewRedisClient builds a go-redis client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (s *RedisStore) Put(ctx context.Context, key, projectID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKey(key), projectID, ttl).Err(); err != nil {
		return fmt.Errorf("repository: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("repository: redis get: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("repository: redis del: %w", err)
	}
	return nil
}

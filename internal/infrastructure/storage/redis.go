package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/cyberportal/domain"
)

// RedisProvider implements domain.StorageProvider on a redis backend.
// Every visitor key carries the configured TTL, so abandoned visitor
// state ages out without a sweeper.
type RedisProvider struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProvider creates a redis-backed storage provider.
func NewRedisProvider(client *redis.Client, ttl time.Duration) *RedisProvider {
	return &RedisProvider{
		client: client,
		prefix: "visitor:",
		ttl:    ttl,
	}
}

// Dial connects a redis client and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Visitor implements domain.StorageProvider
func (p *RedisProvider) Visitor(id string) domain.SessionStorage {
	return &redisStorage{
		client: p.client,
		prefix: p.prefix + id + ":",
		ttl:    p.ttl,
	}
}

type redisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (s *redisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *redisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

var _ domain.StorageProvider = (*RedisProvider)(nil)

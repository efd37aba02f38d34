package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bakatracker:scan:"

func resultKey(id string) string { return keyPrefix + id + ":result" }
func mediaKey(id string) string  { return keyPrefix + id + ":media" }

// RedisStore is a ScanStore backed by Redis string keys with a TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisClient parses redisURL and verifies the server is reachable.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRedisStore wraps client. A non-positive ttl uses DefaultTTL.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) SaveResult(ctx context.Context, result *models.ScanResult) error {
	return s.set(ctx, resultKey(result.ID), result)
}

func (s *RedisStore) GetResult(ctx context.Context, id string) (*models.ScanResult, error) {
	var result models.ScanResult
	if err := s.get(ctx, resultKey(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *RedisStore) SaveMedia(ctx context.Context, id string, media *Media) error {
	return s.set(ctx, mediaKey(id), media)
}

func (s *RedisStore) GetMedia(ctx context.Context, id string) (*Media, error) {
	var media Media
	if err := s.get(ctx, mediaKey(id), &media); err != nil {
		return nil, err
	}
	return &media, nil
}

func (s *RedisStore) DeleteMedia(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, mediaKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete scan media: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, v any) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

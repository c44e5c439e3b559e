package repository

//go:generate mockgen -source=cache_repository.go -destination=mocks/cache_repository_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type CacheRepository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type cacheRepository struct {
	client *redis.Client
}

func NewCacheRepository(client *redis.Client) CacheRepository {
	return &cacheRepository{client: client}
}

// GetJSON decodes the cached value into dest. A missing key is reported as
// (false, nil).
func (r *cacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func (r *cacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.Set(ctx, key, jsonData, expiration).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *cacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// noopCacheRepository is used when Redis is disabled: every lookup misses.
type noopCacheRepository struct{}

func NewNoopCacheRepository() CacheRepository {
	return noopCacheRepository{}
}

func (noopCacheRepository) GetJSON(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

func (noopCacheRepository) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func (noopCacheRepository) Delete(context.Context, ...string) error { return nil }

func (noopCacheRepository) Ping(context.Context) error { return nil }

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisService implements CacheService using Redis SETEX semantics
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisService creates a new Redis-backed cache service
func NewRedisService(ctx context.Context, addr string, db int, username, password string) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Username: username,
		Password: password,
	})

	return &RedisService{
		client: client,
		ctx:    ctx,
	}
}

// Get retrieves a value from Redis
func (r *RedisService) Get(key string) ([]byte, error) {
	value, err := r.client.Get(r.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value in Redis with a time-to-live
func (r *RedisService) Set(key string, value []byte, ttl time.Duration) error {
	return r.client.Set(r.ctx, key, value, ttl).Err()
}

// Delete removes a value from Redis
func (r *RedisService) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// Close closes the Redis connection
func (r *RedisService) Close() error {
	return r.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskflow/backend/internal/config"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

// RedisCache stores JSON-encoded values in Redis behind a circuit breaker,
// so a flapping Redis never stalls request handling.
type RedisCache struct {
	client  *redis.Client
	breaker *CircuitBreaker
	timeout time.Duration
}

func NewRedisCache(cfg config.RedisConfig, addr string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	return &RedisCache{
		client:  rdb,
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		timeout: 3 * time.Second,
	}
}

// NewRedisCacheWithClient wraps an existing client; used by tests with
// miniredis.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		timeout: 3 * time.Second,
	}
}

func (r *RedisCache) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		return r.client.Set(ctx, key, data, expiration).Err()
	})
}

func (r *RedisCache) Get(key string, dest interface{}) error {
	var data string
	var missed bool
	err := r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		var err error
		data, err = r.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// A miss is a healthy answer, not a failure.
			missed = true
			return nil
		}
		return err
	})
	if errors.Is(err, ErrCircuitOpen) {
		return ErrCacheDown
	}
	if err != nil {
		return err
	}
	if missed {
		return ErrCacheMiss
	}

	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisCache) Delete(key string) error {
	return r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		return r.client.Del(ctx, key).Err()
	})
}

// DeletePattern removes all keys matching a glob pattern. Used to
// invalidate list caches after a mutation.
func (r *RedisCache) DeletePattern(pattern string) error {
	return r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		keys, err := r.client.Keys(ctx, pattern).Result()
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}
		return r.client.Del(ctx, keys...).Err()
	})
}

func (r *RedisCache) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

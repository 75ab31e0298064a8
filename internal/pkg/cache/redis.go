// Package cache is the shared key/value cache used by services that can
// tolerate a cold or missing cache (quotes, lookups).
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores string values under namespaced keys. Get returns "" and a nil
// error on a miss.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GenerateKey(operation string, parts ...string) string
	Close() error
}

type redisCache struct {
	client      *redis.Client
	serviceName string
}

func NewRedisCache(addr, serviceName string) Cache {
	return &redisCache{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache: get %q: %w", key, err)
	}
	return val, nil
}

// GenerateKey builds "<service>:<operation>:<part>|<part>...".
func (r *redisCache) GenerateKey(operation string, parts ...string) string {
	return GenerateKey(r.serviceName, operation, parts...)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

// GenerateKey is exported so fakes and the redis cache agree on key layout.
func GenerateKey(serviceName, operation string, parts ...string) string {
	return fmt.Sprintf("%s:%s:%s", serviceName, operation, strings.Join(parts, "|"))
}

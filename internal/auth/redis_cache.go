package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"slurmrestd/shared/logger"
)

// redisCache implements Cache over a Redis connection, grounded on
// lib/cache/redis.go's redisCache — the identity-caching half of
// the JWKS auth flow lib/auth.go builds.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr (host:port, no scheme) and returns a
// Cache backed by it.
func NewRedisCache(addr, password string, db int) Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	logger.Info("auth: redis claims cache initialized", logger.String("addr", addr))
	return &redisCache{client: client}
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

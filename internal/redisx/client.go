package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// Cache wraps the client with the handful of operations the API and worker
// actually use.
type Cache struct{ R *redis.Client }

func (c Cache) Get(ctx context.Context, key string) (string, error) {
	return c.R.Get(ctx, key).Result()
}

func (c Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.R.Set(ctx, key, value, ttl).Err()
}

func (c Cache) Del(ctx context.Context, key string) error {
	return c.R.Del(ctx, key).Err()
}

func (c Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.R.Exists(ctx, key).Result()
	return n > 0, err
}

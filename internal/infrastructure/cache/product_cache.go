package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
)

// ProductCache is a read-through cache over catalog reads. The POS terminal
// hits the product list on every keystroke of the search box, so the catalog
// service consults this before the database.
type ProductCache interface {
	Get(ctx context.Context, key string) (*entity.Product, bool, error)
	Set(ctx context.Context, key string, value *entity.Product, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// NoopProductCache is the fallback when redis is not configured. Every read
// misses; every write succeeds.
type NoopProductCache struct{}

func NewNoopProductCache() *NoopProductCache { return &NoopProductCache{} }

func (NoopProductCache) Get(ctx context.Context, key string) (*entity.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(ctx context.Context, key string, value *entity.Product, ttl time.Duration) error {
	return nil
}

func (NoopProductCache) Invalidate(ctx context.Context, key string) error {
	return nil
}

// RedisProductCache stores products as JSON payloads in redis.
type RedisProductCache struct {
	client *redis.Client
}

func NewRedisProductCache(addr, password string, db int) *RedisProductCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisProductCache{client: client}
}

func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

func (c *RedisProductCache) Get(ctx context.Context, key string) (*entity.Product, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var product entity.Product
	if err := json.Unmarshal([]byte(val), &product); err != nil {
		return nil, false, err
	}
	return &product, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, key string, value *entity.Product, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisProductCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

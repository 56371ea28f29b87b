package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restock-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const productListKey = "products:all"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireProductLock acquires the per-product mutation lock. Purchase
// mutations for one product must not interleave with the recomputation of
// its derived fields, so the whole mutate+recompute unit runs under this lock.
func (c *Client) AcquireProductLock(ctx context.Context, productID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:product:%s", productID), "1", ttl).Result()
}

// ReleaseProductLock releases the per-product mutation lock
func (c *Client) ReleaseProductLock(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:product:%s", productID)).Err()
}

// GetCachedProducts returns the cached raw product list, or nil on a miss.
// Only the stored rows are cached; urgency is always recomputed by the caller
// because the forecast depends on the current date.
func (c *Client) GetCachedProducts(ctx context.Context) ([]models.Product, error) {
	data, err := c.rdb.Get(ctx, productListKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode cached products: %w", err)
	}
	return products, nil
}

// SetCachedProducts stores the raw product list
func (c *Client) SetCachedProducts(ctx context.Context, products []models.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	return c.rdb.Set(ctx, productListKey, data, ttl).Err()
}

// InvalidateProducts drops the cached product list after any mutation
func (c *Client) InvalidateProducts(ctx context.Context) error {
	return c.rdb.Del(ctx, productListKey).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lagerhub/backend/internal/domain/pricing"
)

// RedisPriceCache implements pricing.Cache backed by Redis. Suitable
// when several instances should share one pool of scraped prices.
type RedisPriceCache struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
}

// NewRedisPriceCache connects to Redis and verifies the connection
func NewRedisPriceCache(addr, password string, db int, defaultTTL time.Duration) (*RedisPriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPriceCache{
		client:     client,
		keyPrefix:  "lagerhub:",
		defaultTTL: defaultTTL,
	}, nil
}

// NewRedisPriceCacheWithClient wraps an existing client, useful for tests
func NewRedisPriceCacheWithClient(client *redis.Client, defaultTTL time.Duration) *RedisPriceCache {
	return &RedisPriceCache{
		client:     client,
		keyPrefix:  "lagerhub:",
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a cached result for the query
func (c *RedisPriceCache) Get(ctx context.Context, query string) (*pricing.Result, bool, error) {
	data, err := c.client.Get(ctx, c.key(query)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read price cache: %w", err)
	}

	var result pricing.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached price result: %w", err)
	}
	return &result, true, nil
}

// Set stores a result for the query with a TTL
func (c *RedisPriceCache) Set(ctx context.Context, query string, result *pricing.Result, ttl time.Duration) error {
	if result == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode price result: %w", err)
	}
	if err := c.client.Set(ctx, c.key(query), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write price cache: %w", err)
	}
	return nil
}

// Delete removes a cached result
func (c *RedisPriceCache) Delete(ctx context.Context, query string) error {
	return c.client.Del(ctx, c.key(query)).Err()
}

// Close closes the Redis client
func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}

func (c *RedisPriceCache) key(query string) string {
	return c.keyPrefix + cacheKey(query)
}

var _ pricing.Cache = (*RedisPriceCache)(nil)

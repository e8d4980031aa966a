// Package pricecache caches token USD prices served by the read API.
package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
)

const memoryCacheSize = 64

// TokenPrice is the USD price of a registry token at a block.
type TokenPrice struct {
	Address     string          `json:"address"`
	Symbol      string          `json:"symbol"`
	PriceUSD    decimal.Decimal `json:"price_usd"`
	BlockNumber uint64          `json:"block_number"`
}

// Loader reads fresh prices when the cache has none.
type Loader func(ctx context.Context) ([]TokenPrice, error)

// Store is a TTL key-value store for price lists.
type Store interface {
	Get(ctx context.Context, key string) ([]TokenPrice, bool, error)
	Set(ctx context.Context, key string, prices []TokenPrice, ttl time.Duration) error
}

// Cache serves price lists from a Store, loading them at most once per key concurrently.
type Cache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

// New creates a cache on top of store.
func New(store Store, ttl time.Duration, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &Cache{store: store, ttl: ttl, log: log}
}

// NewFromConfig uses Redis when an address is configured and an in-process cache otherwise.
func NewFromConfig(ctx context.Context, cfg *config.RedisConfig, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	if cfg == nil || cfg.Addr == "" {
		return New(NewMemoryStore(ttl), ttl, log), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Addr, err)
	}

	return New(NewRedisStore(client, cfg.KeyPrefix), ttl, log), nil
}

// Get returns the cached prices under key, calling load on a miss.
// A failing store read is treated as a miss.
func (c *Cache) Get(ctx context.Context, key string, load Loader) ([]TokenPrice, error) {
	prices, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warnw("price cache read failed", "key", key, "error", err)
	}
	if ok {
		CacheLookupInc(true)
		return prices, nil
	}
	CacheLookupInc(false)

	v, err, _ := c.group.Do(key, func() (any, error) {
		prices, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, key, prices, c.ttl); err != nil {
			c.log.Warnw("price cache write failed", "key", key, "error", err)
		}
		return prices, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]TokenPrice), nil
}

// Close releases the underlying store connection, if any.
func (c *Cache) Close() error {
	if closer, ok := c.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)

// RedisStore keeps price lists as JSON strings with a Redis TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]TokenPrice, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %s: %w", key, err)
	}

	var prices []TokenPrice
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached prices %s: %w", key, err)
	}
	return prices, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, prices []TokenPrice, ttl time.Duration) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("failed to encode prices: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process expirable LRU.
type MemoryStore struct {
	lru *expirable.LRU[string, []TokenPrice]
}

// NewMemoryStore creates a store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: expirable.NewLRU[string, []TokenPrice](memoryCacheSize, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]TokenPrice, bool, error) {
	prices, ok := s.lru.Get(key)
	return prices, ok, nil
}

// Set stores prices. The TTL is fixed at construction.
func (s *MemoryStore) Set(_ context.Context, key string, prices []TokenPrice, _ time.Duration) error {
	s.lru.Add(key, prices)
	return nil
}

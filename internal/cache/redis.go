package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"TWScreener/internal/model"
)

const keyPrefix = "twscreener:bars:"

// RedisCache stores bars as JSON strings with a TTL.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache connects to addr and verifies the connection with PING.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client; ttl <= 0 uses DefaultTTL.
func NewRedisCacheWithClient(client *goredis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, symbol string) ([]model.OHLCV, bool, error) {
	data, err := r.client.Get(ctx, redisKey(symbol)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", symbol, err)
	}
	var bars []model.OHLCV
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false, fmt.Errorf("decode cached bars %s: %w", symbol, err)
	}
	return bars, true, nil
}

func (r *RedisCache) Put(ctx context.Context, symbol string, bars []model.OHLCV) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("encode bars %s: %w", symbol, err)
	}
	if err := r.client.Set(ctx, redisKey(symbol), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", symbol, err)
	}
	return nil
}

func redisKey(symbol string) string { return keyPrefix + symbol }

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Package usage provides read-only adapters onto the host's quota counters.
package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/upb/gateway-policy-hooks/gateway"
)

// DefaultKeyPrefix is the prefix the host uses for quota counters
const DefaultKeyPrefix = "quota"

// Config holds the connection settings for RedisEngine
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Now       func() time.Time
}

// RedisEngine reads quota usage from the counters the host keeps in Redis.
// It never writes to them.
type RedisEngine struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ gateway.QuotaEngine = (*RedisEngine)(nil)

// NewRedisEngine creates a RedisEngine and checks the connection
func NewRedisEngine(ctx context.Context, cfg Config) (*RedisEngine, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newRedisEngine(client, cfg), nil
}

func newRedisEngine(client *redis.Client, cfg Config) *RedisEngine {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RedisEngine{client: client, prefix: cfg.KeyPrefix, now: cfg.Now}
}

// CounterKey returns the Redis key holding the counter for key under policyName
func (e *RedisEngine) CounterKey(policyName, key string) string {
	return fmt.Sprintf("%s:%s:%s", e.prefix, policyName, key)
}

// GetUsage returns the consumed allowance for key under policyName.
// A missing counter means nothing was consumed in the current period.
func (e *RedisEngine) GetUsage(ctx context.Context, policyName, key string) (*gateway.QuotaUsage, error) {
	counterKey := e.CounterKey(policyName, key)

	pipe := e.client.Pipeline()
	get := pipe.Get(ctx, counterKey)
	ttl := pipe.PTTL(ctx, counterKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read quota counter %s: %w", counterKey, err)
	}

	usage := &gateway.QuotaUsage{Policy: policyName, Key: key}

	raw, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return usage, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quota counter %s: %w", counterKey, err)
	}

	used, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("quota counter %s is not an integer: %w", counterKey, err)
	}
	usage.Used = used

	if d, err := ttl.Result(); err == nil && d > 0 {
		usage.ResetAt = e.now().Add(d)
	}

	return usage, nil
}

// Ping checks the Redis connection
func (e *RedisEngine) Ping(ctx context.Context) error {
	return e.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (e *RedisEngine) Close() error {
	return e.client.Close()
}

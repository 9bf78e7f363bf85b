// Package cache provides the shared ephemeral tiers backed by Redis: the
// translation cache in front of the durable store and the dedup marker store
// that keeps one work item in flight per translation key. Both must be
// visible to every api and worker process, so they live in a network
// key-value service rather than process memory.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	translationKeyPrefix = "translation:"
	dedupKeyPrefix       = "queued:"

	// DefaultDedupTTL is the safety net for markers orphaned by a worker
	// crash. Liveness comes from the worker clearing markers explicitly,
	// not from expiry.
	DefaultDedupTTL = 10 * time.Minute
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// TranslationCache is the ephemeral tier in front of the translation store.
type TranslationCache struct {
	client *redis.Client
}

func NewTranslationCache(client *redis.Client) *TranslationCache {
	return &TranslationCache{client: client}
}

func (c *TranslationCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, translationKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get translation from Redis: %w", err)
	}
	return value, true, nil
}

func (c *TranslationCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, translationKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set translation in Redis: %w", err)
	}
	return nil
}

func (c *TranslationCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, translationKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete translation from Redis: %w", err)
	}
	return nil
}

// DedupMarker flags translation keys that already have a work item
// outstanding. Markers are set by the request path and cleared by the worker
// on both success and failure.
type DedupMarker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDedupMarker(client *redis.Client, ttl time.Duration) *DedupMarker {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupMarker{client: client, ttl: ttl}
}

func (d *DedupMarker) IsQueued(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup marker: %w", err)
	}
	return n > 0, nil
}

// MarkQueued is idempotent and refreshes the TTL on repeat calls.
func (d *DedupMarker) MarkQueued(ctx context.Context, key string) error {
	if err := d.client.Set(ctx, dedupKeyPrefix+key, "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set dedup marker: %w", err)
	}
	return nil
}

// MarkProcessed is an idempotent delete.
func (d *DedupMarker) MarkProcessed(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, dedupKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete dedup marker: %w", err)
	}
	return nil
}

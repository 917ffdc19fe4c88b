// Package rediscache decorates a store.DataStore with a read-through
// cache of encoded postings-block bodies, grounded on the teacher's
// internal/cache/redis.go connection-pool tuning (OpenTelemetry tracing
// dropped — see DESIGN.md — since this repo has no multi-service trace
// to stitch together).
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	enginelog "github.com/echoid/engine/internal/logger"
	"github.com/echoid/engine/internal/metrics"
	"github.com/echoid/engine/internal/store"
)

// Cache wraps a store.DataStore, caching GetPlistBlock results in
// Redis keyed by term and block id.
type Cache struct {
	store.DataStore
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
	m   *metrics.Metrics
}

// Options configures the Redis connection, mirroring the teacher's
// NewRedisClient pool tuning.
type Options struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
	Logger   *zap.Logger
}

// New connects to Redis and wraps backing as its cached read path.
func New(backing store.DataStore, opts Options) (*Cache, error) {
	host := opts.Host
	if host == "" {
		host = "localhost"
	}
	port := opts.Port
	if port == "" {
		port = "6379"
	}
	log := opts.Logger
	if log == nil {
		log = enginelog.Nop()
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     opts.Password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("rediscache: connect: %w", err)
	}

	log.Info("rediscache connected", zap.String("address", fmt.Sprintf("%s:%s", host, port)))
	return &Cache{DataStore: backing, rdb: client, ttl: ttl, log: log, m: metrics.Manager()}, nil
}

func blockKey(term uint32, blockID int) string {
	return fmt.Sprintf("echoid:plist:%d:%d", term, blockID)
}

// GetPlistBlock checks Redis first, falling back to the wrapped
// DataStore on a miss and populating the cache for next time.
func (c *Cache) GetPlistBlock(term uint32, blockID int) ([]byte, bool) {
	ctx := context.Background()
	key := blockKey(term, blockID)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		c.m.PostingBlocksDecoded.Inc()
		return data, true
	}

	body, ok := c.DataStore.GetPlistBlock(term, blockID)
	if !ok {
		return nil, false
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.log.Warn("rediscache: failed to populate cache entry", zap.Error(err), zap.Uint32("term", term))
	}
	return body, true
}

// Invalidate drops the cached entry for a block. Cache's own write
// path does not call it: writes go straight to the wrapped store, and a
// block cached before them stays cached until Invalidate or its TTL.
func (c *Cache) Invalidate(term uint32, blockID int) error {
	return c.rdb.Del(context.Background(), blockKey(term, blockID)).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/service/logger"
)

// CacheConfig picks the redis database and key namespace a cache lives in
type CacheConfig struct {
	database  int
	keyPrefix string
}

var (
	CommentRateLimiterCache = CacheConfig{database: 0, keyPrefix: "comment-rl"}
)

// Cache is a namespaced view over a redis client
type Cache struct {
	client    *redis.Client
	keyPrefix string
}

// NewCache connects to the redis at REDIS_URL using config's database
func NewCache(config CacheConfig) *Cache {
	opts, err := redis.ParseURL(env.GetString("REDIS_URL"))
	if err != nil {
		panic(fmt.Sprintf("invalid REDIS_URL: %s", err))
	}
	opts.DB = config.database

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.For(nil).Errorf("failed to ping redis at %s: %s", opts.Addr, err)
	}

	return &Cache{client: client, keyPrefix: config.keyPrefix}
}

// NewCacheFromClient wraps an existing client
func NewCacheFromClient(client *redis.Client, keyPrefix string) *Cache {
	return &Cache{client: client, keyPrefix: keyPrefix}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// Key returns the namespaced form of key
func (c *Cache) Key(key string) string {
	if c.keyPrefix == "" {
		return key
	}
	return c.keyPrefix + ":" + key
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Package rds provides a prefixed key value client over redis
package rds

import (
	"context"
	"errors"
	"time"

	perr "pulse/internal/platform/errors"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key this process writes
const DefaultPrefix = "pulse:"

// Config configures redis connectivity
// URL wins over Addr when both are set
type Config struct {
	URL      string
	Addr     string
	DB       int
	Password string
	Prefix   string
}

// Client wraps a redis client and prefixes keys
type Client struct {
	rdb    *redis.Client
	prefix string
}

// Open builds a client from cfg; it does not dial until first use
func Open(_ context.Context, cfg Config) (*Client, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		o, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "redis: bad url")
		}
		opts = o
	case cfg.Addr != "":
		opts = &redis.Options{Addr: cfg.Addr, DB: cfg.DB, Password: cfg.Password}
	default:
		return nil, perr.InvalidArgf("redis: url or addr required")
	}
	return New(redis.NewClient(opts), cfg.Prefix), nil
}

// New wraps an existing redis client
func New(rdb *redis.Client, prefix string) *Client {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Client{rdb: rdb, prefix: prefix}
}

// Key returns the namespaced key
func (c *Client) Key(k string) string { return c.prefix + k }

// Get returns the value for key, NotFound when absent
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, perr.NotFoundf("redis: %s not found", key)
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "redis: get %s", key)
	}
	return b, nil
}

// Set stores val under key; ttl <= 0 means no expiry
func (c *Client) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, c.Key(key), val, ttl).Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "redis: set %s", key)
	}
	return nil
}

// Del removes keys, missing keys are ignored
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.Key(k)
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "redis: del")
	}
	return nil
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "redis: ping")
	}
	return nil
}

// Close releases the connection pool
func (c *Client) Close() error { return c.rdb.Close() }

// Package redis builds the shared go-redis client. Both the contact store
// and the health endpoint hang off the same connection pool.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"contactvault/internal/platform/config"
)

// Client wraps go-redis so callers can health-check the backend.
type Client struct {
	*redis.Client
}

// New dials Redis from the configuration. A nil Client with a nil error
// means Redis is not configured; callers fall back to another backend.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports whether the backend answers a ping.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}

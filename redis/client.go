package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultPrefix = "inbox:"

// Client wraps a go-redis client and namespaces every key it touches.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient connects to addr and verifies the connection with PING.
func NewClient(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	client := NewFromRDB(rdb)
	if err := client.Ping(ctx); err != nil {
		_ = rdb.Close()
		log.Error().Err(err).
			Str("addr", addr).
			Int("db", db).
			Msg("Redis connection failed")
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	log.Info().
		Str("addr", addr).
		Int("db", db).
		Msg("Redis connected successfully")

	return client, nil
}

// NewFromRDB wraps an existing go-redis client.
func NewFromRDB(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, prefix: defaultPrefix}
}

// WithPrefix returns a copy of the client using a different key namespace.
func (c *Client) WithPrefix(prefix string) *Client {
	return &Client{rdb: c.rdb, prefix: prefix}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) key(parts ...string) string {
	k := c.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

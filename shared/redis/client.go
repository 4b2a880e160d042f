package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects the Redis server. Zero PoolSize uses the default.
type Options struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

const defaultPoolSize = 20

// Client is the single connection pool shared by account leases, read-model
// caches and event streams.
type Client struct {
	*redis.Client
}

// NewClient connects and verifies the connection with a PING.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.PoolSize == 0 {
		opts.PoolSize = defaultPoolSize
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     opts.PoolSize,
	})

	client := &Client{Client: rdb}
	if err := client.Healthy(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return client, nil
}

// Healthy pings the server with a short deadline.
func (c *Client) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis at %s unreachable: %w", c.Options().Addr, err)
	}
	return nil
}

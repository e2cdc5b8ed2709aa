// Package redis connects to the optional Redis instance that backs the shared
// login rate limiter.
package redis

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type Client struct {
	rdb    *redis.Client
	addr   string
	logger ectologger.Logger
}

// NewClient dials Redis and fails unless the server answers a ping.
func NewClient(ctx context.Context, cfg Config, logger ectologger.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: connectTimeout,
	})
	c := &Client{rdb: rdb, addr: cfg.Addr(), logger: logger}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "redis at %s is unreachable", c.addr)
	}

	logger.WithField("addr", c.addr).Info("connected to redis")
	return c, nil
}

func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Ping satisfies the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	c.logger.WithField("addr", c.addr).Info("closing redis connection")
	return c.rdb.Close()
}

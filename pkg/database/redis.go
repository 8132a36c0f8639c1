package database

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis instance holding contexts and caches.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewRedisClient creates a client and pings it, retrying with backoff.
func NewRedisClient(ctx context.Context, cfg RedisConfig, l *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	err := withRetry(ctx, "ping redis", l, always, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Package cache holds the Redis connection shared by the session store and the
// sign-in attempt counter.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/AtoyanMikhail/tokenauth/internal/config"
	"github.com/AtoyanMikhail/tokenauth/internal/logger"
)

// Connect dials the Redis instance at cfg.StoreURL and pings it.
func Connect(cfg config.RedisConfig, l logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.StoreURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse store url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Std())
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	l.Info("Redis connection established",
		logger.String("addr", opts.Addr),
		logger.Int("db", opts.DB))

	return client, nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
)

const signInAttemptPrefix = "signin_attempt:"

// AttemptCounter counts failed sign-in attempts per username and client IP.
type AttemptCounter interface {
	// Register records one failed attempt and returns the running count.
	Register(ctx context.Context, username, ip string) (int64, error)
	Count(ctx context.Context, username, ip string) (int64, error)
	Reset(ctx context.Context, username, ip string) error
}

type redisAttempts struct {
	client  redis.UniversalClient
	logger  logger.Logger
	window  time.Duration
	timeout time.Duration
}

// NewAttemptCounter returns a counter whose entries expire window after the
// last failed attempt.
func NewAttemptCounter(client redis.UniversalClient, window, timeout time.Duration, l logger.Logger) AttemptCounter {
	return &redisAttempts{
		client:  client,
		logger:  l,
		window:  window,
		timeout: timeout,
	}
}

func attemptKey(username, ip string) string {
	return fmt.Sprintf("%s{%s}:%s", signInAttemptPrefix, username, ip)
}

func (r *redisAttempts) Register(ctx context.Context, username, ip string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	key := attemptKey(username, ip)

	pipe := r.client.TxPipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to register sign-in attempt",
			logger.String("username", username),
			logger.String("ip", ip),
			logger.Error(err))
		return 0, fmt.Errorf("failed to register sign-in attempt: %w", err)
	}

	count := incrCmd.Val()
	r.logger.Info("Failed sign-in attempt registered",
		logger.String("username", username),
		logger.String("ip", ip),
		logger.Int("attempts", int(count)))

	return count, nil
}

func (r *redisAttempts) Count(ctx context.Context, username, ip string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, attemptKey(username, ip)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sign-in attempts",
			logger.String("username", username),
			logger.String("ip", ip),
			logger.Error(err))
		return 0, fmt.Errorf("failed to get sign-in attempts: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sign-in attempts count: %w", err)
	}

	return count, nil
}

func (r *redisAttempts) Reset(ctx context.Context, username, ip string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, attemptKey(username, ip)).Err(); err != nil {
		r.logger.Error("Failed to reset sign-in attempts",
			logger.String("username", username),
			logger.String("ip", ip),
			logger.Error(err))
		return fmt.Errorf("failed to reset sign-in attempts: %w", err)
	}

	return nil
}

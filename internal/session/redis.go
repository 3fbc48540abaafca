package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
)

// Key layout. The {user} hash tag keeps a user's sessions and their index in
// one cluster slot, which the scripts below rely on.
const (
	sessionKeyFormat = "session:{%s}:%s"
	indexKeyFormat   = "sessions:{%s}"
	sessionValue     = "1"
)

var saveScript = redis.NewScript(`
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
redis.call("SADD", KEYS[2], ARGV[1])
local current = redis.call("PTTL", KEYS[2])
if current < tonumber(ARGV[3]) then
  redis.call("PEXPIRE", KEYS[2], ARGV[3])
end
return 1
`)

var removeScript = redis.NewScript(`
local removed = redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
return removed
`)

var removeAllScript = redis.NewScript(`
local ids = redis.call("SMEMBERS", KEYS[1])
local removed = 0
for _, id in ipairs(ids) do
  removed = removed + redis.call("DEL", ARGV[1] .. id)
end
redis.call("DEL", KEYS[1])
return removed
`)

type redisStore struct {
	client  redis.UniversalClient
	logger  logger.Logger
	timeout time.Duration
}

// NewRedisStore wraps an existing client. Every call is bounded by timeout.
func NewRedisStore(client redis.UniversalClient, timeout time.Duration, l logger.Logger) Store {
	return &redisStore{
		client:  client,
		logger:  l,
		timeout: timeout,
	}
}

func sessionKey(userID, tokenID string) string {
	return fmt.Sprintf(sessionKeyFormat, userID, tokenID)
}

func indexKey(userID string) string {
	return fmt.Sprintf(indexKeyFormat, userID)
}

func sessionKeyPrefix(userID string) string {
	return sessionKey(userID, "")
}

func (r *redisStore) Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		r.logger.Debug("Session already expired, not saving",
			logger.String("user_id", userID),
			logger.String("token_id", tokenID))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	keys := []string{sessionKey(userID, tokenID), indexKey(userID)}
	err := saveScript.Run(ctx, r.client, keys, tokenID, sessionValue, ttl.Milliseconds()).Err()
	if err != nil {
		return r.unavailable("Failed to save session", err, userID, tokenID)
	}

	r.logger.Debug("Session saved",
		logger.String("user_id", userID),
		logger.String("token_id", tokenID),
		logger.Duration("ttl", ttl))

	return nil
}

func (r *redisStore) Exists(ctx context.Context, userID, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	count, err := r.client.Exists(ctx, sessionKey(userID, tokenID)).Result()
	if err != nil {
		return false, r.unavailable("Failed to check session existence", err, userID, tokenID)
	}

	return count > 0, nil
}

func (r *redisStore) Remove(ctx context.Context, userID, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	keys := []string{sessionKey(userID, tokenID), indexKey(userID)}
	removed, err := removeScript.Run(ctx, r.client, keys, tokenID).Int64()
	if err != nil {
		return false, r.unavailable("Failed to remove session", err, userID, tokenID)
	}

	return removed > 0, nil
}

func (r *redisStore) RemoveAll(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	removed, err := removeAllScript.Run(ctx, r.client, []string{indexKey(userID)}, sessionKeyPrefix(userID)).Int64()
	if err != nil {
		return 0, r.unavailable("Failed to remove user sessions", err, userID, "")
	}

	r.logger.Info("User sessions removed",
		logger.String("user_id", userID),
		logger.Int("count", int(removed)))

	return int(removed), nil
}

// Active also drops index entries whose session key has already expired.
func (r *redisStore) Active(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ids, err := r.client.SMembers(ctx, indexKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, r.unavailable("Failed to list user sessions", err, userID, "")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	existsCmds := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		existsCmds[i] = pipe.Exists(ctx, sessionKey(userID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, r.unavailable("Failed to list user sessions", err, userID, "")
	}

	active := make([]string, 0, len(ids))
	stale := make([]interface{}, 0)
	for i, cmd := range existsCmds {
		if cmd.Val() > 0 {
			active = append(active, ids[i])
		} else {
			stale = append(stale, ids[i])
		}
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, indexKey(userID), stale...).Err(); err != nil {
			r.logger.Warn("Failed to prune session index",
				logger.String("user_id", userID),
				logger.Error(err))
		}
	}

	return active, nil
}

// Close closes redis connection
func (r *redisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", logger.Error(err))
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}

	r.logger.Info("Redis connection closed")
	return nil
}

func (r *redisStore) unavailable(msg string, err error, userID, tokenID string) error {
	fields := []logger.Field{logger.String("user_id", userID), logger.Error(err)}
	if tokenID != "" {
		fields = append(fields, logger.String("token_id", tokenID))
	}
	r.logger.Error(msg, fields...)

	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

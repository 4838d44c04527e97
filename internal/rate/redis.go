package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript prunes, counts and conditionally records one hit.
// Scores and durations are unix milliseconds.
//
// Returns {allowed, remaining, retry_after_ms}.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)

if count < limit then
  redis.call("ZADD", key, now, member)
  redis.call("PEXPIRE", key, window)
  return {1, limit - count - 1, 0}
end

local retry = 0
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if oldest[2] then
  retry = tonumber(oldest[2]) + window - now
  if retry < 0 then
    retry = 0
  end
end
return {0, 0, retry}
`

var slidingWindowLua = redis.NewScript(slidingWindowScript)

// RedisStore shares windows across processes through Redis sorted sets.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to "grl".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "grl"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(client string) string {
	return s.prefix + ":" + client
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Result, error) {
	raw, err := slidingWindowLua.Run(ctx, s.redis,
		[]string{s.key(key)},
		now.UnixMilli(),
		window.Milliseconds(),
		limit,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(raw) != 3 {
		return Result{}, fmt.Errorf("%w: unexpected script reply of length %d", ErrRedisUnavailable, len(raw))
	}

	res := Result{
		Allowed:   raw[0] == 1,
		Limit:     limit,
		Remaining: int(raw[1]),
	}
	if !res.Allowed {
		res.Remaining = 0
		res.RetryAfter = time.Duration(raw[2]) * time.Millisecond
	}
	return res, nil
}

// Reset deletes the window of key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

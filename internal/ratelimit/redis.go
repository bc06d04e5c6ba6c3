package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// incrScript applies the fixed-window check-and-increment atomically. At the
// ceiling it refuses to increment and reports the remaining window TTL.
var incrScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = tonumber(redis.call('GET', key) or '0')
if current >= limit then
    local ttl = redis.call('PTTL', key)
    if ttl < 0 then
        ttl = 0
    end
    return {0, current, ttl}
end

local count = redis.call('INCR', key)
if count == 1 then
    redis.call('PEXPIRE', key, window)
end

local ttl = redis.call('PTTL', key)
return {1, count, ttl}
`)

// RedisStore keeps counters in Redis so quotas hold across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Time, error) {
	result, err := incrScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if len(result) != 3 {
		return false, 0, time.Time{}, errUnexpectedResult
	}

	resetAt := time.Now().Add(time.Duration(result[2]) * time.Millisecond)
	return result[0] == 1, int(result[1]), resetAt, nil
}

// Sweep is a no-op: Redis expires counters via PEXPIRE.
func (s *RedisStore) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}

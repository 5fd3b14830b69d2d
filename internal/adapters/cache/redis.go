// Package cache implements domain.CounterCache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"holidaymatch/internal/domain"
)

// RedisCache stores counters as Redis strings with a TTL, next to a
// "<key>:gen" generation counter.
type RedisCache struct {
	client redis.Cmdable
}

var _ domain.CounterCache = (*RedisCache)(nil)

// NewRedisCache wraps an existing go-redis client.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Connect parses redisURL, pings the server and returns the client.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("redis: REDIS_URL is not set")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}

// generationTTL outlives any single read-then-store, so a generation never
// expires between GetCount and SetCount.
const generationTTL = 24 * time.Hour

func generationKey(key string) string {
	return key + ":gen"
}

// setIfGeneration writes KEYS[1] only while KEYS[2] still holds ARGV[1].
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// bumpGeneration deletes each counter KEYS[i] and increments its generation KEYS[i+1].
var bumpGeneration = redis.NewScript(`
for i = 1, #KEYS, 2 do
	redis.call('DEL', KEYS[i])
	redis.call('INCR', KEYS[i + 1])
	redis.call('PEXPIRE', KEYS[i + 1], ARGV[1])
end
return #KEYS / 2
`)

func (r *RedisCache) GetCount(ctx context.Context, key string) (int, int64, bool, error) {
	vals, err := r.client.MGet(ctx, key, generationKey(key)).Result()
	if err != nil {
		return 0, 0, false, err
	}
	var gen int64
	if raw, ok := vals[1].(string); ok {
		gen, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, false, fmt.Errorf("redis: generation of %q is not an integer: %w", key, err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return 0, gen, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, 0, false, fmt.Errorf("redis: counter %q is not an integer: %w", key, err)
	}
	return n, gen, true, nil
}

func (r *RedisCache) SetCount(ctx context.Context, key string, count int, gen int64, ttl time.Duration) (bool, error) {
	keys := []string{key, generationKey(key)}
	res, err := setIfGeneration.Run(ctx, r.client, keys, strconv.FormatInt(gen, 10), count, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (r *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	scriptKeys := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		scriptKeys = append(scriptKeys, k, generationKey(k))
	}
	return bumpGeneration.Run(ctx, r.client, scriptKeys, generationTTL.Milliseconds()).Err()
}

// Noop is a CounterCache that never stores anything.
type Noop struct{}

var _ domain.CounterCache = Noop{}

func (Noop) GetCount(context.Context, string) (int, int64, bool, error) { return 0, 0, false, nil }
func (Noop) SetCount(context.Context, string, int, int64, time.Duration) (bool, error) {
	return false, nil
}
func (Noop) Invalidate(context.Context, ...string) error { return nil }

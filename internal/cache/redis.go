// Package cache keeps extracted season-leader tables in Redis so API
// reads don't re-render the leaders page on every request. The fetch
// layer's in-process page cache empties on restart; this one survives
// deploys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/model"
)

// DefaultTTL matches the fetch layer's page cache window.
const DefaultTTL = 15 * time.Minute

// RedisCache stores computed leaderboard slices.
type RedisCache struct {
	client *redis.Client
	log    *logging.Logger
}

// NewRedisCache connects to Redis from a URL and pings it.
func NewRedisCache(redisURL string, log *logging.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisCacheWithClient(client, log), nil
}

// NewRedisCacheWithClient wraps an existing Redis client.
func NewRedisCacheWithClient(client *redis.Client, log *logging.Logger) *RedisCache {
	if log == nil {
		log = logging.Default()
	}
	return &RedisCache{
		client: client,
		log:    log.Named("cache"),
	}
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func leadersKey(year int, gender string, category model.StatCategory, limit int) string {
	return fmt.Sprintf("ceres:leaders:%d:%s:%s:%d", year, strings.ToLower(gender), category, limit)
}

// GetLeaders returns a cached leaderboard slice, false on any miss.
// Undecodable entries are dropped and count as misses.
func (rc *RedisCache) GetLeaders(ctx context.Context, year int, gender string, category model.StatCategory, limit int) ([]model.StatLine, bool) {
	key := leadersKey(year, gender, category, limit)

	raw, err := rc.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		rc.log.Debug("leaders cache read failed", "key", key, "error", err)
		return nil, false
	}

	var lines []model.StatLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		rc.log.Warn("dropping undecodable cache entry", "key", key, "error", err)
		rc.client.Del(ctx, key)
		return nil, false
	}
	return lines, true
}

// SetLeaders stores a leaderboard slice for ttl. Write failures are
// logged and swallowed; the cache is best effort.
func (rc *RedisCache) SetLeaders(ctx context.Context, year int, gender string, category model.StatCategory, limit int, lines []model.StatLine, ttl time.Duration) {
	payload, err := json.Marshal(lines)
	if err != nil {
		return
	}

	key := leadersKey(year, gender, category, limit)
	if err := rc.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		rc.log.Debug("leaders cache write failed", "key", key, "error", err)
	}
}

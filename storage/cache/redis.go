// Package cache implements the dashboard cache on top of redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/istudy/dashboard/core/dashboard"
	"github.com/istudy/dashboard/services/metrics"
)

const keyPrefix = "istudy:"

type RedisCache struct {
	client *redis.Client
}

var _ dashboard.Cache = (*RedisCache)(nil)

// NewRedisCache connects to url and checks the connection.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return &RedisCache{client: client}, nil
}

// Get decodes the value stored at key into dst. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.TrackCache("miss")
			return false, nil
		}
		metrics.TrackCache("error")
		return false, errors.Wrapf(err, "getting %s", key)
	}
	if err = json.Unmarshal(data, dst); err != nil {
		metrics.TrackCache("error")
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	metrics.TrackCache("hit")
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return errors.Wrapf(c.client.Set(ctx, keyPrefix+key, data, ttl).Err(), "setting %s", key)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return errors.Wrap(c.client.Del(ctx, prefixed...).Err(), "deleting keys")
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

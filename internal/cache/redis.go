package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisNamespace = "genfity:reports:"

// Redis shares cached reports between API replicas.
type Redis struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisFromClient(client), nil
}

// NewRedisFromClient wraps an already configured client without pinging it.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, redisNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, redisNamespace+key, value, ttl).Err()
}

func (r *Redis) InvalidateMerchant(ctx context.Context, merchantID int64, prefixes ...string) error {
	patterns := redisPatterns(merchantID, prefixes)
	for _, pattern := range patterns {
		iter := r.client.Scan(ctx, 0, pattern, 200).Iterator()
		batch := make([]string, 0, 200)
		for iter.Next(ctx) {
			key := iter.Val()
			if !belongsTo(strings.TrimPrefix(key, redisNamespace), merchantID, prefixes) {
				continue
			}
			batch = append(batch, key)
			if len(batch) == cap(batch) {
				if err := r.client.Del(ctx, batch...).Err(); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(batch) > 0 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

// redisPatterns returns SCAN patterns that cover the merchant's keys. Matches
// are re-checked with belongsTo since a glob cannot pin the merchant segment.
func redisPatterns(merchantID int64, prefixes []string) []string {
	if len(prefixes) == 0 {
		return []string{fmt.Sprintf("%s*|%d*", redisNamespace, merchantID)}
	}
	out := make([]string, 0, 2*len(prefixes))
	for _, prefix := range prefixes {
		out = append(out,
			fmt.Sprintf("%s%s|%d|*", redisNamespace, prefix, merchantID),
			fmt.Sprintf("%s%s|%d", redisNamespace, prefix, merchantID),
		)
	}
	return out
}

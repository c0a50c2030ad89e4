package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cf"

// Connect configures a Redis client from url and checks that it answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url must not be empty")
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}
	return client, nil
}

// Redis stores JSON-encoded upstream results keyed by endpoint and handle.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Key returns the Redis key for an endpoint result. Handles are matched
// case-insensitively, as Codeforces does.
func Key(endpoint, handle string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, endpoint, strings.ToLower(handle))
}

// Get decodes the cached value into dst. A missing key is reported as
// (false, nil).
func (r *Redis) Get(ctx context.Context, endpoint, handle string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, Key(endpoint, handle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", Key(endpoint, handle), err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", Key(endpoint, handle), err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, endpoint, handle string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key(endpoint, handle), err)
	}
	if err := r.client.Set(ctx, Key(endpoint, handle), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("write %s: %w", Key(endpoint, handle), err)
	}
	return nil
}

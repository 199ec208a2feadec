// Package sessioncache implements the Session Cache (SC): a short-TTL
// key-value store holding forward (real→token) and reverse
// (token→ciphertext) bindings, partitioned by session id.
//
// Keys use the canonical shapes:
//
//	<session>:forward:<type>:<real>  -> token
//	<session>:reverse:<token>        -> ciphertext
package sessioncache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the Session Cache interface. All implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the value stored at key, or ok=false if absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value at key with the given TTL, overwriting any
	// existing entry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// DeletePattern removes every key beginning with prefix. Used for
	// session teardown (destroy).
	DeletePattern(ctx context.Context, prefix string) error
	// Delete removes a single exact key, if present. Used for rolling
	// back a partially-written binding; unlike DeletePattern it never
	// touches a sibling key that happens to share a prefix.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying connection.
	Close() error
}

// ForwardKey builds the canonical forward-binding key.
func ForwardKey(sessionID, entityType, real string) string {
	return fmt.Sprintf("%s:forward:%s:%s", sessionID, entityType, real)
}

// ReverseKey builds the canonical reverse-binding key.
func ReverseKey(sessionID, token string) string {
	return fmt.Sprintf("%s:reverse:%s", sessionID, token)
}

// SessionPrefix builds the prefix covering every key belonging to a session.
func SessionPrefix(sessionID string) string {
	return sessionID + ":"
}

// redisCache is the production Cache backend.
type redisCache struct {
	client *redis.Client
}

// Options configures the Redis connection.
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// New connects to Redis using the given options.
func New(opts Options) Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &redisCache{client: client}
}

// NewFromClient wraps an already-constructed *redis.Client. Used in
// tests against a miniredis instance.
func NewFromClient(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sessioncache: get %q: %w", key, err)
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("sessioncache: set %q: %w", key, err)
	}
	return nil
}

// DeletePattern scans for every key with the given prefix and removes
// it. SCAN rather than KEYS, so teardown of large sessions does not
// block the server.
func (c *redisCache) DeletePattern(ctx context.Context, prefix string) error {
	pattern := prefix + "*"
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("sessioncache: scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("sessioncache: delete matched keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("sessioncache: delete %q: %w", key, err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

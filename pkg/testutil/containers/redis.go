//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"coopreg/internal/platform/config"
	"coopreg/internal/platform/redis"
)

// Redis is a throwaway Redis server reached through the same client the
// service builds from REDIS_URL.
type Redis struct {
	URL    string
	Client *redis.Client
}

// StartRedis runs redis:7-alpine for the lifetime of t.
func StartRedis(t *testing.T) *Redis {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	testcontainers.CleanupContainer(t, ctr)

	url, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis url: %v", err)
	}
	client, err := redis.New(ctx, config.RedisConfig{URL: url, PoolSize: 4, DialTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return &Redis{URL: url, Client: client}
}

// Reset drops every key so tests in a suite start from an empty keyspace.
func (r *Redis) Reset(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}

// KeysWithPrefix lists keys under prefix, e.g. the rate limiter's "rl:".
func (r *Redis) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.Client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

package bucket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"coopreg/internal/ratelimit/models"
)

// allowScript increments a fixed-window counter, setting its expiry on the
// first hit, and returns the count with the remaining ttl in milliseconds.
var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisBucketStore is a fixed-window limiter shared by every replica.
type RedisBucketStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisBucketStore(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	windowMillis := limit.Window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1000
	}

	raw, err := allowScript.Run(ctx, s.client, []string{key}, windowMillis).Result()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit %s: %w", key, err)
	}
	current, ttlMillis, err := parseAllowReply(raw)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resetAt := now.Add(limit.Window)
	if ttlMillis > 0 {
		resetAt = now.Add(time.Duration(ttlMillis) * time.Millisecond)
	}
	remaining := limit.Requests - int(current)
	if remaining < 0 {
		remaining = 0
	}
	res := &models.Result{
		Allowed:   current <= int64(limit.Requests),
		Limit:     limit.Requests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	return res.WithRetryAfter(now), nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func parseAllowReply(raw any) (int64, int64, error) {
	values, ok := raw.([]any)
	if !ok || len(values) < 2 {
		return 0, 0, errors.New("unexpected redis rate limit reply")
	}
	current, ok := values[0].(int64)
	if !ok {
		return 0, 0, errors.New("invalid redis counter reply")
	}
	ttl, _ := values[1].(int64)
	return current, ttl, nil
}

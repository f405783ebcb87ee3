package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketgate/internal/admission/models"
	"marketgate/pkg/requestcontext"
)

// hitScript increments KEYS[1] and starts its expiry on the first hit of a
// window. ARGV[1] is the window in milliseconds. Returns {count, pttl}.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if count == 1 or ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore implements fixed windows as INCR counters that expire with the
// window, so counts are shared by every gateway instance.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (*models.RateWindow, error) {
	vals, err := hitScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("hit window: %w", err)
	}
	if len(vals) != 2 {
		return nil, errors.New("hit window: unexpected script reply")
	}

	now := requestcontext.Now(ctx)
	remaining := time.Duration(vals[1]) * time.Millisecond
	return &models.RateWindow{
		Key:         key,
		WindowStart: now.Add(remaining - window),
		Window:      window,
		Count:       int(vals[0]),
	}, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset window: %w", err)
	}
	return nil
}

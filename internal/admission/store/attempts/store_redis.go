package attempts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"marketgate/internal/admission/models"
	"marketgate/pkg/requestcontext"
)

// recordFailureScript increments the hash at KEYS[1] and applies the lock in
// a single round trip.
//
//	ARGV[1] now (unix ms)  ARGV[2] threshold  ARGV[3] lock (ms)  ARGV[4] ttl (ms)
//
// Returns {count, lock_until_ms, locked_now}.
var recordFailureScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local lock_until = tonumber(redis.call('HGET', KEYS[1], 'lock_until') or '0')
if lock_until > 0 and lock_until <= now then
  redis.call('DEL', KEYS[1])
  lock_until = 0
end
local count = redis.call('HINCRBY', KEYS[1], 'count', 1)
redis.call('HSET', KEYS[1], 'last_seen', ARGV[1])
local locked_now = 0
if lock_until == 0 and count >= tonumber(ARGV[2]) then
  lock_until = now + tonumber(ARGV[3])
  redis.call('HSET', KEYS[1], 'lock_until', lock_until)
  locked_now = 1
end
local ttl = tonumber(ARGV[4])
if lock_until > 0 and (lock_until - now) > ttl then
  ttl = lock_until - now
end
redis.call('PEXPIRE', KEYS[1], ttl)
return {count, lock_until, locked_now}
`)

// RedisStore keeps attempt records in Redis hashes. Keys expire after the
// record TTL (or the remaining lock, whichever is longer), so no sweep is
// needed.
type RedisStore struct {
	client    redis.UniversalClient
	recordTTL time.Duration
}

func NewRedis(client redis.UniversalClient, recordTTL time.Duration) *RedisStore {
	if recordTTL <= 0 {
		recordTTL = DefaultIdleTTL
	}
	return &RedisStore{client: client, recordTTL: recordTTL}
}

func (s *RedisStore) Get(ctx context.Context, address string) (*models.AttemptRecord, error) {
	key := models.AttemptKey(address)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("get attempt record: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	record, err := parseRecord(address, fields)
	if err != nil {
		return nil, err
	}
	if record.LockExpired(requestcontext.Now(ctx)) {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return nil, fmt.Errorf("reset expired attempt record: %w", err)
		}
		return nil, nil
	}
	return record, nil
}

func (s *RedisStore) RecordFailure(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.AttemptRecord, bool, error) {
	now := requestcontext.Now(ctx)
	vals, err := recordFailureScript.Run(ctx, s.client,
		[]string{models.AttemptKey(address)},
		now.UnixMilli(), threshold, lockFor.Milliseconds(), s.recordTTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, false, fmt.Errorf("record failure: %w", err)
	}
	if len(vals) != 3 {
		return nil, false, errors.New("record failure: unexpected script reply")
	}

	record := &models.AttemptRecord{
		Address:  address,
		Count:    int(vals[0]),
		LastSeen: time.UnixMilli(now.UnixMilli()),
	}
	if vals[1] > 0 {
		record.LockUntil = time.UnixMilli(vals[1])
	}
	return record, vals[2] == 1, nil
}

func (s *RedisStore) Clear(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, models.AttemptKey(address)).Err(); err != nil {
		return fmt.Errorf("clear attempt record: %w", err)
	}
	return nil
}

func parseRecord(address string, fields map[string]string) (*models.AttemptRecord, error) {
	record := &models.AttemptRecord{Address: address}
	if v, ok := fields["count"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse attempt count: %w", err)
		}
		record.Count = n
	}
	if v, ok := fields["lock_until"]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lock_until: %w", err)
		}
		if ms > 0 {
			record.LockUntil = time.UnixMilli(ms)
		}
	}
	if v, ok := fields["last_seen"]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse last_seen: %w", err)
		}
		record.LastSeen = time.UnixMilli(ms)
	}
	return record, nil
}
